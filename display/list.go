package display

import (
	"fmt"
	"iter"
	"slices"
)

const (
	MAX_VEC = 32768 // Display list capacity.
)

// VecKind is the type of a display list primitive.
type VecKind int

const (
	VEC_LINE  = VecKind(0) // line
	VEC_POINT = VecKind(1) // point
)

func (kind VecKind) String() string {
	switch kind {
	case VEC_LINE:
		return "line"
	case VEC_POINT:
		return "point"
	}
	return fmt.Sprintf("VecKind(%d)", int(kind))
}

// Vec is a single display list primitive. Points use X1,Y1 and repeat
// them in X2,Y2. Coordinates are 0..1023 with the origin at the bottom left.
type Vec struct {
	Kind       VecKind
	X1, Y1     int
	X2, Y2     int
	Brightness float32 // 0..1
}

func (vec Vec) String() string {
	if vec.Kind == VEC_POINT {
		return fmt.Sprintf("point %d,%d @%.2f", vec.X1, vec.Y1, vec.Brightness)
	}
	return fmt.Sprintf("line %d,%d-%d,%d @%.2f", vec.X1, vec.Y1, vec.X2, vec.Y2, vec.Brightness)
}

// List is the bounded, ordered display list written by the display
// processor. It is only emptied by Clear.
type List struct {
	Dropped int // Primitives discarded because the list was full.

	vecs []Vec
}

// append adds a primitive, dropping it if the list is full.
func (dl *List) append(vec Vec) {
	if len(dl.vecs) >= MAX_VEC {
		dl.Dropped++
		return
	}
	if dl.vecs == nil {
		dl.vecs = make([]Vec, 0, 1024)
	}
	dl.vecs = append(dl.vecs, vec)
}

// Line appends a line primitive.
func (dl *List) Line(x1, y1, x2, y2 int, bright float32) {
	dl.append(Vec{Kind: VEC_LINE, X1: x1, Y1: y1, X2: x2, Y2: y2, Brightness: bright})
}

// Point appends a point primitive.
func (dl *List) Point(x, y int, bright float32) {
	dl.append(Vec{Kind: VEC_POINT, X1: x, Y1: y, X2: x, Y2: y, Brightness: bright})
}

// Clear empties the list. The drop counter is kept.
func (dl *List) Clear() {
	dl.vecs = dl.vecs[:0]
}

// Len returns the number of primitives in the list.
func (dl *List) Len() int {
	return len(dl.vecs)
}

// At returns the n'th primitive.
func (dl *List) At(n int) Vec {
	return dl.vecs[n]
}

// All iterates over the primitives in order.
func (dl *List) All() iter.Seq2[int, Vec] {
	return slices.All(dl.vecs)
}

// Copy returns the primitives as a new slice.
func (dl *List) Copy() []Vec {
	return slices.Clone(dl.vecs)
}
