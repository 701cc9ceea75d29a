package oracle

// Switch holds at most one child oracle and allows that child to be
// replaced at any time — the Controller uses one to hold "the current
// queue" so play(name) can atomically swap in a brand new Chain.
//
// Switch mirrors Chain's bootstrap rule: the very first Advance() ever
// called on a Switch that has never had Current() called on it first
// silently consumes the live child's first item as a baseline and
// returns its *second* item. Every SetChild afterwards resets the "drew"
// flag so the next Current()/Advance() reads the replacement fresh —
// unlike Chain's Add, SetChild is a deliberate source swap rather than
// appending capacity, so it does not preserve a memoized "nothing" across
// the swap.
type Switch struct {
	child Oracle

	hasCurrent bool
	memoized   Item
	memoizedOK bool

	drew          bool
	currentCalled bool
	bootstrapped  bool
}

// NewSwitch returns a Switch with no child set.
func NewSwitch() *Switch {
	return &Switch{}
}

// SetChild replaces the held child, resetting the drawn/memoized state so
// the replacement is read fresh.
func (s *Switch) SetChild(child Oracle) {
	s.child = child
	s.drew = false
	s.hasCurrent = false
}

// Current returns (and memoizes) the held child's current item.
func (s *Switch) Current() (Item, bool) {
	s.currentCalled = true
	if s.hasCurrent {
		return s.memoized, s.memoizedOK
	}
	item, ok := s.draw()
	s.hasCurrent = true
	s.memoized, s.memoizedOK = item, ok
	return item, ok
}

func (s *Switch) draw() (Item, bool) {
	if s.child == nil {
		return Item{}, false
	}
	item, ok := s.child.Current()
	if ok {
		s.drew = true
	}
	return item, ok
}

// Advance moves to the next item.
func (s *Switch) Advance() (Item, bool) {
	s.hasCurrent = false

	if !s.bootstrapped {
		s.bootstrapped = true
		if !s.currentCalled {
			s.draw() // silently establish the baseline, discard it
		}
	}

	if s.child == nil {
		return Item{}, false
	}
	if !s.drew {
		item, ok := s.child.Current()
		s.drew = true
		return item, ok
	}
	return s.child.Advance()
}
