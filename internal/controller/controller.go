// Package controller owns the Player and the root Oracle tree, translating
// user-level actions (play, queue, repeat, interrupt, device selection)
// into tree mutations and Player calls. It is the single synchronization
// point spec §5 requires: every mutating method and the Player's
// end-of-track callback take the same mutex, grounded in the teacher's
// mutex-guarded playlist.go/server.go pattern generalized from "one
// playlist" to "own the whole scheduling tree".
package controller

import (
	"fmt"
	"sync"

	"github.com/quietloop/noisebox/internal/library"
	"github.com/quietloop/noisebox/internal/metrics"
	"github.com/quietloop/noisebox/internal/oracle"
	"github.com/quietloop/noisebox/internal/player"
)

// UseAfterFreeError reports that a DeviceSnapshot was used after a newer
// ListDevices() call invalidated it.
type UseAfterFreeError struct{}

func (e *UseAfterFreeError) Error() string {
	return "device snapshot used after a newer list_devices() call freed it"
}

// IndexOutOfRangeError reports an out-of-bounds device index.
type IndexOutOfRangeError struct{ Index int }

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("device index out of range: %d", e.Index)
}

// DeviceSnapshot is an indexed view over the device list as of one
// ListDevices() call. It is a stable handle only until the next
// ListDevices() call, which frees it (spec §4.3).
type DeviceSnapshot struct {
	devices []player.Device
	gen     uint64
}

// Len reports the number of devices in the snapshot.
func (s DeviceSnapshot) Len() int { return len(s.devices) }

// Controller owns the Player and the fixed topology
// root = Interrupt(default = Switch(child = Chain())).
type Controller struct {
	mu sync.Mutex

	lib    *library.Library
	player player.Player

	root  *oracle.Interrupt
	sw    *oracle.Switch
	chain *oracle.Chain

	paused     bool
	deviceGen  uint64
	currentDev string

	onSongChange func(item oracle.Item)
}

// New wires a Controller over lib and p with the fixed Oracle topology
// and installs the Player's end-of-track callback.
func New(lib *library.Library, p player.Player) *Controller {
	chain := oracle.NewChain()
	sw := oracle.NewSwitch()
	sw.SetChild(chain)
	root := oracle.NewInterrupt(sw)

	c := &Controller{
		lib:    lib,
		player: p,
		root:   root,
		sw:     sw,
		chain:  chain,
	}
	p.OnNextTrack(c.onNextTrack)
	return c
}

// resolveItems maps a library name to Oracle items via library.Resolve.
func (c *Controller) resolveItems(name string) ([]oracle.Item, error) {
	songs, err := c.lib.Resolve(name)
	if err != nil {
		return nil, err
	}
	items := make([]oracle.Item, len(songs))
	for i, song := range songs {
		items[i] = oracle.Item{Alias: song.Alias, URI: song.URI}
	}
	return items, nil
}

// Play resolves name, replaces the live queue with a fresh single-leaf
// chain, clears any interrupt, and starts playback from the new queue's
// first item.
func (c *Controller) Play(name string) error {
	items, err := c.resolveItems(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := oracle.NewChain()
	fresh.Add(oracle.NewPlaylist(items))
	c.chain = fresh
	c.sw.SetChild(fresh)
	c.root.ClearInterrupt()

	return c.playCurrentLocked()
}

// Queue appends name's resolved items to the live queue as a one-shot
// Playlist.
func (c *Controller) Queue(name string) error {
	items, err := c.resolveItems(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.chain.Add(oracle.NewPlaylist(items))
	return nil
}

// QueueRepeat appends name's resolved items to the live queue as a
// Repeating oracle. times == nil repeats forever; times == &0 plays the
// sequence through exactly once with no extra repeats — not a no-op and
// not an error (see DESIGN.md for the Open Question resolution).
func (c *Controller) QueueRepeat(name string, times *int) error {
	items, err := c.resolveItems(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.chain.Add(oracle.NewRepeating(items, times))
	return nil
}

// InterruptWith sets name's resolved items as the interrupt child and
// starts playback from it.
func (c *Controller) InterruptWith(name string) error {
	items, err := c.resolveItems(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.root.SetInterrupt(oracle.NewPlaylist(items))
	return c.playCurrentLocked()
}

// NextSong resolves the open NEXT_SONG question (spec §9): it forces
// immediate progression to the next scheduled item, exactly like the
// Player's own end-of-track callback, rather than merely restarting the
// current item. See DESIGN.md for the rationale.
func (c *Controller) NextSong() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceAndPlayLocked()
}

// TogglePause flips the Player's pause state.
func (c *Controller) TogglePause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = !c.paused
	c.player.SetPause(c.paused)
}

// SetPause sets the Player's pause state explicitly.
func (c *Controller) SetPause(pause bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = pause
	c.player.SetPause(pause)
}

// Stop halts playback.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
	c.player.Stop()
}

// Playing reports whether the Player is actively rendering audio
// (playing, buffering, or opening — a paused track does not count, per
// spec §4.3).
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player.Playing()
}

// ListDevices takes a fresh indexed snapshot of the Player's device list,
// invalidating any snapshot returned by a previous call.
func (c *Controller) ListDevices() DeviceSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceGen++
	return DeviceSnapshot{devices: c.player.ListDevices(), gen: c.deviceGen}
}

// SetDevice resolves index against snapshot and selects that device on
// the Player. It fails with UseAfterFreeError if a newer ListDevices()
// call has since freed the snapshot, or IndexOutOfRangeError if index is
// out of bounds.
func (c *Controller) SetDevice(snapshot DeviceSnapshot, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snapshot.gen != c.deviceGen {
		return &UseAfterFreeError{}
	}
	if index < 0 || index >= len(snapshot.devices) {
		return &IndexOutOfRangeError{Index: index}
	}
	dev := snapshot.devices[index]
	if err := c.player.SetDevice(dev.ID); err != nil {
		return err
	}
	c.currentDev = dev.ID
	return nil
}

// GetDevice returns the id of the currently selected device, or "" if
// none has been selected yet.
func (c *Controller) GetDevice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentDev
}

// OnSongChange registers fn to be called whenever the Controller starts
// playing a new item as a result of the Player's own end-of-track
// callback or NextSong — never as a result of Play/InterruptWith, which
// the caller already knows the outcome of. fn runs with the Controller's
// mutex held, so it must not call back into the Controller.
func (c *Controller) OnSongChange(fn func(item oracle.Item)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSongChange = fn
}

// onNextTrack is installed on the Player and invoked from the Player's own
// audio thread on end-of-track. It must not mutate the tree directly from
// that thread; taking the Controller's mutex here is the hand-off point
// spec §5 requires.
func (c *Controller) onNextTrack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceAndPlayLocked()
}

// advanceAndPlayLocked advances the root oracle and plays the result, or
// stops if the tree has nothing left. Caller must hold mu.
func (c *Controller) advanceAndPlayLocked() error {
	item, ok := c.root.Advance()
	if !ok {
		metrics.OracleAdvances.WithLabelValues("exhausted").Inc()
		c.player.Stop()
		return nil
	}
	metrics.OracleAdvances.WithLabelValues("item").Inc()
	if err := c.player.Play(item.URI); err != nil {
		return err
	}
	if c.onSongChange != nil {
		c.onSongChange(item)
	}
	return nil
}

// playCurrentLocked plays whatever the root oracle's Current() reports,
// or stops if it has nothing. Caller must hold mu.
func (c *Controller) playCurrentLocked() error {
	item, ok := c.root.Current()
	if !ok {
		c.player.Stop()
		return nil
	}
	return c.player.Play(item.URI)
}
