package io

import (
	"iter"
	"maps"
	"sync/atomic"
)

// Light pen function bits.
const (
	LIGHTPEN_FN_X    = 1 << 0 // AC = pen X.
	LIGHTPEN_FN_Y    = 1 << 1 // AC = pen Y.
	LIGHTPEN_FN_SKIP = 1 << 2 // Skip if the pen sees light.
)

// LightPen holds the last reported pen position and whether it is touching
// the screen.
type LightPen struct {
	x   atomic.Uint32
	y   atomic.Uint32
	hit atomic.Bool
}

var _ Device = (*LightPen)(nil)

// Set the pen state.
func (lp *LightPen) Set(x, y int, hit bool) {
	lp.x.Store(uint32(x) & 0xffff)
	lp.y.Store(uint32(y) & 0xffff)
	lp.hit.Store(hit)
}

// Get the pen state.
func (lp *LightPen) Get() (x, y int, hit bool) {
	return int(lp.x.Load()), int(lp.y.Load()), lp.hit.Load()
}

// Reset does nothing; the pen registers belong to the host.
func (lp *LightPen) Reset() {
}

// Transfer executes the light pen functions. When both coordinate bits
// are set Y wins, as it is read last.
func (lp *LightPen) Transfer(fn uint16, ac uint16) (out uint16, skip bool) {
	out = ac
	if (fn & LIGHTPEN_FN_X) != 0 {
		out = uint16(lp.x.Load())
	}
	if (fn & LIGHTPEN_FN_Y) != 0 {
		out = uint16(lp.y.Load())
	}
	if (fn&LIGHTPEN_FN_SKIP) != 0 && lp.hit.Load() {
		skip = true
	}

	return
}

// Defines returns the light pen equates.
func (lp *LightPen) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DEV_LIGHTPEN": defineCode(DEVICE_LIGHTPEN),
		"LPEN_X":       defineCode(LIGHTPEN_FN_X),
		"LPEN_Y":       defineCode(LIGHTPEN_FN_Y),
		"LPEN_SKIP":    defineCode(LIGHTPEN_FN_SKIP),
	})
}
