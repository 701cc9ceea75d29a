package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(aliases ...string) []Item {
	out := make([]Item, len(aliases))
	for i, a := range aliases {
		out[i] = Item{Alias: a, URI: "uri://" + a}
	}
	return out
}

func aliases(is []Item) []string {
	out := make([]string, len(is))
	for i, it := range is {
		out[i] = it.Alias
	}
	return out
}

// collect drains up to 100 items from an Oracle, Current() first and then
// repeatedly Advance(), matching the property laws in spec §8.
func collect(o Oracle) []Item {
	var out []Item
	item, ok := o.Current()
	for n := 0; ok && n < 100; n++ {
		out = append(out, item)
		item, ok = o.Advance()
	}
	return out
}

func TestPlaylistBasic(t *testing.T) {
	songs := items("1", "2", "3")
	p := NewPlaylist(songs)
	assert.Equal(t, []string{"1", "2", "3"}, aliases(collect(p)))
	_, ok := p.Advance()
	assert.False(t, ok)
}

func TestPlaylistEmpty(t *testing.T) {
	p := NewPlaylist(nil)
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestPlaylistStaysExhausted(t *testing.T) {
	p := NewPlaylist(items("1"))
	p.Advance()
	for i := 0; i < 50; i++ {
		_, ok := p.Advance()
		assert.False(t, ok)
	}
}

func TestRepeatingFinite(t *testing.T) {
	seq := items("a", "b")
	two := 2
	r := NewRepeating(seq, &two)
	got := aliases(collect(r))
	// one initial pass plus two permitted wraps = 3 full passes
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, got)
	_, ok := r.Advance()
	assert.False(t, ok)
}

func TestRepeatingInfiniteCapsAt100(t *testing.T) {
	seq := items("x")
	r := NewRepeating(seq, nil)
	got := collect(r)
	assert.Len(t, got, 100)
}

func TestChainTwoOracles(t *testing.T) {
	p1 := NewPlaylist(items("1", "2"))
	p2 := NewPlaylist(items("3", "4", "5", "6"))
	c := NewChain()
	c.Add(p1)
	c.Add(p2)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, aliases(collect(c)))
}

func TestChainFinishListThenContinue(t *testing.T) {
	c := NewChain()
	c.Add(NewPlaylist(items("1", "2")))
	first := aliases(collect(c))
	c.Add(NewPlaylist(items("3", "4")))
	second := aliases(collect(c))
	assert.Equal(t, []string{"1", "2"}, first)
	assert.Equal(t, []string{"3", "4"}, second)
}

func TestChainToleratesEmptyChildren(t *testing.T) {
	c := NewChain()
	c.Add(Null{})
	c.Add(NewPlaylist(nil))
	c.Add(NewPlaylist(items("1", "2", "3")))
	assert.Equal(t, []string{"1", "2", "3"}, aliases(collect(c)))
}

// TestChainMemoizedToNothingSticks pins spec §8 item 5.
func TestChainMemoizedToNothingSticks(t *testing.T) {
	c := NewChain()
	_, ok := c.Current()
	assert.False(t, ok)

	c.Add(NewPlaylist(items("x")))
	_, ok = c.Current()
	assert.False(t, ok, "memoized nothing must stick until Advance()")

	item, ok := c.Advance()
	assert.True(t, ok)
	assert.Equal(t, "x", item.Alias)
}

// TestChainDirectAdvanceSkipsFirst pins spec §8 item 6.
func TestChainDirectAdvanceSkipsFirst(t *testing.T) {
	c := NewChain()
	c.Add(NewPlaylist(items("a", "b")))
	item, ok := c.Advance()
	assert.True(t, ok)
	assert.Equal(t, "b", item.Alias)
}

func TestChainCurrentObservedFirstPreventsSkip(t *testing.T) {
	c := NewChain()
	_, ok := c.Current() // observed while empty
	assert.False(t, ok)

	c.Add(NewPlaylist(items("x", "y")))
	item, ok := c.Advance()
	assert.True(t, ok)
	assert.Equal(t, "x", item.Alias, "Current() having been observed must prevent the skip-first behavior")
}

func TestSwitchNoChild(t *testing.T) {
	s := NewSwitch()
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSwitchSetChildResetsDrawFlag(t *testing.T) {
	s := NewSwitch()
	s.SetChild(NewPlaylist(items("1", "2", "3")))
	first := aliases(collect(s))

	s.SetChild(NewPlaylist(items("4", "5", "6")))
	second := aliases(collect(s))

	assert.Equal(t, []string{"1", "2", "3"}, first)
	assert.Equal(t, []string{"4", "5", "6"}, second, "set_child must start the replacement at its first item")
}

// TestSwitchBootstrapSkipsFirst pins the Switch analog of the chain
// skip-first-on-direct-advance rule: Current() was never observed before
// the first ever Advance().
func TestSwitchBootstrapSkipsFirst(t *testing.T) {
	s := NewSwitch()
	s.SetChild(NewPlaylist(items("1", "2", "3")))
	item, ok := s.Advance()
	assert.True(t, ok)
	assert.Equal(t, "2", item.Alias)
}

func TestInterruptDefaultBehavior(t *testing.T) {
	d := NewPlaylist(items("1", "2", "3"))
	in := NewInterrupt(d)
	assert.Equal(t, []string{"1", "2", "3"}, aliases(collect(in)))
}

// TestInterruptBeforeFinish pins spec §8 item 8.
func TestInterruptBeforeFinish(t *testing.T) {
	d := NewPlaylist(items("1", "2", "3"))
	in := NewInterrupt(d)

	item, _ := in.Current()
	assert.Equal(t, "1", item.Alias)
	item, _ = in.Advance()
	assert.Equal(t, "2", item.Alias)

	in.SetInterrupt(NewPlaylist(items("4", "5", "6")))
	rest := aliases(collect(in))
	assert.Equal(t, []string{"4", "5", "6", "3"}, rest)
}

func TestInterruptNoDefault(t *testing.T) {
	in := NewInterrupt(nil)
	_, ok := in.Current()
	assert.False(t, ok)

	in.SetInterrupt(NewPlaylist(items("1", "2")))
	assert.Equal(t, []string{"1", "2"}, aliases(collect(in)))
}

func TestInterruptClear(t *testing.T) {
	d := NewPlaylist(items("1", "2", "3"))
	in := NewInterrupt(d)
	in.SetInterrupt(NewPlaylist(items("9")))
	item, _ := in.Current()
	assert.Equal(t, "9", item.Alias)

	in.ClearInterrupt()
	item, ok := in.Current()
	assert.True(t, ok)
	assert.Equal(t, "1", item.Alias)
}
