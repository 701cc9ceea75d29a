package localcli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleParsesCommandsAndArgs(t *testing.T) {
	in := strings.NewReader("play P\nqueue s1 s2\n")
	out := &strings.Builder{}
	c := New(in, out)
	commands := c.Start()

	first := recv(t, commands)
	assert.Equal(t, "play", first.Name)
	assert.Equal(t, []string{"P"}, first.Args)

	second := recv(t, commands)
	assert.Equal(t, "queue", second.Name)
	assert.Equal(t, []string{"s1", "s2"}, second.Args)
}

func TestConsoleSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n   \nstop\n")
	out := &strings.Builder{}
	c := New(in, out)
	commands := c.Start()

	cmd := recv(t, commands)
	assert.Equal(t, "stop", cmd.Name)
}

func TestConsoleExitClosesChannel(t *testing.T) {
	in := strings.NewReader("exit\nplay P\n")
	out := &strings.Builder{}
	c := New(in, out)
	commands := c.Start()

	_, ok := <-commands
	assert.False(t, ok, "exit should close the channel before yielding further commands")
}

func TestConsoleEOFClosesChannel(t *testing.T) {
	in := strings.NewReader("")
	out := &strings.Builder{}
	c := New(in, out)
	commands := c.Start()

	_, ok := <-commands
	assert.False(t, ok)
}

func recv(t *testing.T, commands <-chan Command) Command {
	t.Helper()
	select {
	case cmd, ok := <-commands:
		require.True(t, ok, "channel closed before a command arrived")
		return cmd
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
		return Command{}
	}
}
