// Package protocol implements the wire message schema: a discriminated
// Message envelope carrying exactly one Command or Event, the closed
// enumerations of command/event names, and the error taxonomy with its
// production-redaction rule. It is grounded in the teacher's switch-based
// MPD command dispatch (internal/mpd/router.go), generalized from a
// line-oriented text protocol to a JSON envelope, and serializes with
// goccy/go-json the way the rest of the domain stack does.
package protocol

import json "github.com/goccy/go-json"

// ErrorType is the closed error taxonomy from spec §3/§7.
type ErrorType int

const (
	ErrorTypeUser ErrorType = iota
	ErrorTypeClient
	ErrorTypeFailure
	ErrorTypeInternal
)

var errorTypeNames = [...]string{
	ErrorTypeUser:     "USER_ERROR",
	ErrorTypeClient:   "CLIENT_ERROR",
	ErrorTypeFailure:  "FAILURE",
	ErrorTypeInternal: "INTERNAL_ERROR",
}

func (t ErrorType) String() string {
	if int(t) < 0 || int(t) >= len(errorTypeNames) {
		return "UNKNOWN_ERROR"
	}
	return errorTypeNames[t]
}

// MarshalJSON renders the error type as its wire string.
func (t ErrorType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the wire string back into an ErrorType.
func (t *ErrorType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range errorTypeNames {
		if name == s {
			*t = ErrorType(i)
			return nil
		}
	}
	return &UnknownDiscriminatorError{Kind: "error_type", Name: s}
}

// ErrorEnv distinguishes a redacted production error envelope from a
// fully detailed debug one.
type ErrorEnv int

const (
	EnvProduction ErrorEnv = iota
	EnvDebug
)

var errorEnvNames = [...]string{
	EnvProduction: "PRODUCTION",
	EnvDebug:      "DEBUG",
}

func (e ErrorEnv) String() string {
	if int(e) < 0 || int(e) >= len(errorEnvNames) {
		return "PRODUCTION"
	}
	return errorEnvNames[e]
}

func (e ErrorEnv) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *ErrorEnv) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range errorEnvNames {
		if name == s {
			*e = ErrorEnv(i)
			return nil
		}
	}
	return &UnknownDiscriminatorError{Kind: "error_env", Name: s}
}

// Song is the wire representation of a library song (spec §6). Note the
// wire field is "name", matching the external protocol even though the
// library package calls the equivalent field "alias".
type Song struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	LocalPath   string            `json:"local_path,omitempty"`
}

// Playlist is the wire representation of a library playlist (spec §6).
type Playlist struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Songs       []string          `json:"songs,omitempty"`
}

// UnknownDiscriminatorError reports a command_name/event_name (or other
// closed-enum wire string) outside the registered set.
type UnknownDiscriminatorError struct {
	Kind string // "command", "event", "error_type", "error_env"
	Name string
}

func (e *UnknownDiscriminatorError) Error() string {
	return "could not find " + e.Kind + " name '" + e.Name + "'"
}
