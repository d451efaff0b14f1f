package game

// ActionStack holds the sequences in progress, innermost last. The stack
// owns its entries: callers ask it for the top instead of keeping their own
// reference, which could go stale after a pop.
type ActionStack struct {
	entries []Sequence
}

func NewActionStack() *ActionStack {
	return &ActionStack{}
}

func (s *ActionStack) Push(seq Sequence) {
	s.entries = append(s.entries, seq)
}

// Pop removes the innermost sequence. Popping an empty stack is fatal.
func (s *ActionStack) Pop() Sequence {
	if len(s.entries) == 0 {
		panic(ErrEmptyStack)
	}
	top := s.entries[len(s.entries)-1]
	s.entries[len(s.entries)-1] = nil
	s.entries = s.entries[:len(s.entries)-1]
	return top
}

// Top returns the innermost sequence, or nil.
func (s *ActionStack) Top() Sequence {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

func (s *ActionStack) Len() int {
	return len(s.entries)
}

func (s *ActionStack) Empty() bool {
	return len(s.entries) == 0
}

// Entries returns the sequences outermost first. The slice is shared with
// the stack and must not be modified.
func (s *ActionStack) Entries() []Sequence {
	return s.entries
}

// Keys lists the keys of the entries, outermost first.
func (s *ActionStack) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, seq := range s.entries {
		keys[i] = seq.Key()
	}
	return keys
}

// Copy deep-copies every entry, including paused outer sequences.
func (s *ActionStack) Copy() *ActionStack {
	entries := make([]Sequence, len(s.entries))
	for i, seq := range s.entries {
		entries[i] = seq.Copy()
	}
	return &ActionStack{entries: entries}
}

func (s *ActionStack) Equal(other *ActionStack) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for i := range s.entries {
		if s.entries[i].Key() != other.entries[i].Key() {
			return false
		}
	}
	return true
}
