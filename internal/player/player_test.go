package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubPlayStopPause(t *testing.T) {
	p := NewStub()
	assert.False(t, p.Playing())

	require := assert.New(t)
	require.NoError(p.Play("uri://x"))
	assert.True(t, p.Playing())

	p.SetPause(true)
	assert.False(t, p.Playing(), "a paused track is not actively rendering audio")

	p.SetPause(false)
	assert.True(t, p.Playing())

	p.Stop()
	assert.False(t, p.Playing())
}

func TestStubSetPauseNoopWhenStopped(t *testing.T) {
	p := NewStub()
	p.SetPause(true)
	assert.False(t, p.Playing())
}

func TestStubDevices(t *testing.T) {
	p := NewStub()
	p.SetAvailableDevices([]Device{{ID: "a"}, {ID: "b"}})
	assert.Len(t, p.ListDevices(), 2)

	assert.NoError(t, p.SetDevice("b"))

	err := p.SetDevice("missing")
	var target *DeviceNotFoundError
	assert.ErrorAs(t, err, &target)
}

func TestStubFireNextTrack(t *testing.T) {
	p := NewStub()
	called := false
	p.OnNextTrack(func() { called = true })
	p.FireNextTrack()
	assert.True(t, called)
}
