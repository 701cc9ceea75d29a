// Package player defines the contract the Controller expects from the
// audio engine that actually renders sound. The audio engine itself is
// out of scope (spec §1); this package holds only the interface and a
// reference in-memory implementation used by tests and local/demo runs,
// grounded in the teacher's state.go PlaybackState enum stripped of all
// VLC/decoder specifics.
package player

import "sync"

// State mirrors the teacher's PlaybackState enum, generalized to the
// three states the Controller's playing() contract cares about.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// Device is one entry of a list_devices() snapshot.
type Device struct {
	ID   string
	Name string
}

// Player is the external audio engine contract from spec §1.
type Player interface {
	Play(uri string) error
	Stop()
	SetPause(pause bool)
	Playing() bool
	SetDevice(id string) error
	ListDevices() []Device
	OnNextTrack(fn func())
}

// Stub is a reference Player that does not touch real audio hardware. It
// tracks just enough state to make the Controller's contract testable:
// Play marks the state playing, Stop/SetPause flip it, and an end-of-track
// callback can be triggered explicitly by tests via FireNextTrack.
type Stub struct {
	mu sync.Mutex

	state    State
	current  string
	devices  []Device
	callback func()
}

// NewStub returns a Stub player with no devices configured.
func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Play(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = uri
	s.state = StatePlaying
	return nil
}

func (s *Stub) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ""
	s.state = StateStopped
}

func (s *Stub) SetPause(pause bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	if pause {
		s.state = StatePaused
	} else {
		s.state = StatePlaying
	}
}

// Playing reports "actively rendering audio" per the Controller's
// definition in spec §4.3 (playing/buffering/opening) — a paused track is
// loaded but not actively rendering, so it does not count.
func (s *Stub) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePlaying
}

func (s *Stub) SetDevice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.ID == id {
			return nil
		}
	}
	return &DeviceNotFoundError{ID: id}
}

func (s *Stub) ListDevices() []Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// SetAvailableDevices is test/demo scaffolding, not part of the Player
// contract: it seeds the device list the stub reports.
func (s *Stub) SetAvailableDevices(devices []Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append([]Device(nil), devices...)
}

func (s *Stub) OnNextTrack(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callback = fn
}

// FireNextTrack simulates the audio engine reaching end-of-track, invoking
// the registered callback the way a real engine's own audio thread would
// — the callback must hand off rather than mutate Controller state
// directly (spec §5).
func (s *Stub) FireNextTrack() {
	s.mu.Lock()
	fn := s.callback
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// DeviceNotFoundError reports that SetDevice was called with an unknown id.
type DeviceNotFoundError struct{ ID string }

func (e *DeviceNotFoundError) Error() string { return "device not found: " + e.ID }
