package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLevel(input), "input %q", input)
	}
}

func TestInitSetsLevel(t *testing.T) {
	Init(Config{Level: "error"})
	assert.Equal(t, zerolog.ErrorLevel, L().GetLevel())

	Init(Config{Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, L().GetLevel())
}

func TestWithComponentTagsLogger(t *testing.T) {
	Init(Config{Level: "info"})
	l := WithComponent("transport")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
