package display

const (
	STACK_LIMIT = 16 // Maximum return stack depth
)

// Stack is the display processor's return address stack.
type Stack struct {
	Data []uint16
}

// Push a return address. Returns false, storing nothing, if the stack is full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	if s.Data == nil {
		s.Data = make([]uint16, 0, STACK_LIMIT)
	}
	s.Data = append(s.Data, value)

	return true
}

func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) >= STACK_LIMIT
}

// Depth is the index of the top of stack.
func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
