package oracle

// Interrupt holds a default child and an optional interrupt child. While
// the interrupt is set and non-empty, its items come first; once it is
// exhausted or explicitly cleared, control reverts to the default, which
// resumes exactly where it left off (the default is never advanced while
// an interrupt is live).
type Interrupt struct {
	def       Oracle
	interrupt Oracle
}

// NewInterrupt builds an Interrupt over the given default child (which may
// be nil).
func NewInterrupt(def Oracle) *Interrupt {
	return &Interrupt{def: def}
}

// SetDefault replaces the default child.
func (in *Interrupt) SetDefault(def Oracle) {
	in.def = def
}

// SetInterrupt sets (or replaces) the interrupt child. A nil oracle is
// equivalent to ClearInterrupt.
func (in *Interrupt) SetInterrupt(child Oracle) {
	in.interrupt = child
}

// ClearInterrupt drops the interrupt child, if any, reverting immediately
// to the default.
func (in *Interrupt) ClearInterrupt() {
	in.interrupt = nil
}

// Current prefers the interrupt child; if it has nothing to offer, it
// falls through to the default without mutating either child.
func (in *Interrupt) Current() (Item, bool) {
	if in.interrupt != nil {
		if item, ok := in.interrupt.Current(); ok {
			return item, true
		}
	}
	if in.def == nil {
		return Item{}, false
	}
	return in.def.Current()
}

// Advance prefers the interrupt child until it yields nothing, at which
// point the interrupt is silently dropped and the default is advanced.
func (in *Interrupt) Advance() (Item, bool) {
	if in.interrupt != nil {
		item, ok := in.interrupt.Advance()
		if ok {
			return item, true
		}
		in.interrupt = nil
	}
	if in.def == nil {
		return Item{}, false
	}
	return in.def.Advance()
}
