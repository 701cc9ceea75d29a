package oracle

// Chain is an append-only composition of child oracles, consulted in
// order: once a child yields nothing, the next child is consulted, and
// children appended after the others are exhausted are picked up on a
// later Advance without any extra action from the caller.
//
// Chain carries the memoization state described in the design: hasCurrent
// plus a memoized value implement the "memoized-to-nothing sticks" rule,
// and drew/currentCalled/bootstrapped together implement the
// "skip-first-on-direct-advance" rule — the first Advance() ever called on
// a Chain that has never had Current() called on it first silently
// consumes the first child's first item as an implicit baseline and
// returns the *second* item, exactly as if Current() had been called
// first.
type Chain struct {
	children []Oracle
	ptr      int

	hasCurrent bool
	memoized   Item
	memoizedOK bool

	drew          bool // children[ptr]'s Current() has already been drawn
	currentCalled bool // Current() has ever been invoked on this Chain
	bootstrapped  bool // the first Advance() has already made its decision
}

// NewChain returns an empty Chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a child oracle. A nil child is ignored.
func (c *Chain) Add(child Oracle) {
	if child == nil {
		return
	}
	c.children = append(c.children, child)
}

// Current materializes (and memoizes) the first available item by
// scanning forward from ptr through the children's own Current(). A
// previously memoized value — including a memoized "nothing" — is
// returned as-is without re-scanning, so that adding children after a
// nothing-memoizing Current() does not change what Current() reports
// until Advance is called.
func (c *Chain) Current() (Item, bool) {
	c.currentCalled = true
	if c.hasCurrent {
		return c.memoized, c.memoizedOK
	}
	item, ok := c.scan()
	c.hasCurrent = true
	c.memoized, c.memoizedOK = item, ok
	return item, ok
}

// scan walks children forward from ptr, consulting each child's Current()
// without mutating it. A child that reports nothing is permanently
// skipped (ptr moves past it for good); a child that reports something
// is marked "drawn" so the next Advance() moves it forward instead of
// re-reading its Current().
func (c *Chain) scan() (Item, bool) {
	for c.ptr < len(c.children) {
		item, ok := c.children[c.ptr].Current()
		if ok {
			c.drew = true
			return item, true
		}
		c.ptr++
		c.drew = false
	}
	return Item{}, false
}

// Advance moves to the next item.
func (c *Chain) Advance() (Item, bool) {
	c.hasCurrent = false

	if !c.bootstrapped {
		c.bootstrapped = true
		if !c.currentCalled {
			// Current() was never observed: silently establish the
			// baseline from whatever child is live right now (without
			// returning it), then fall through to draw the real item.
			c.scan()
		}
	}

	for {
		if c.ptr >= len(c.children) {
			return Item{}, false
		}
		child := c.children[c.ptr]
		if !c.drew {
			item, ok := child.Current()
			c.drew = true
			if ok {
				return item, true
			}
			c.ptr++
			c.drew = false
			continue
		}
		item, ok := child.Advance()
		if ok {
			return item, true
		}
		c.ptr++
		c.drew = false
	}
}
