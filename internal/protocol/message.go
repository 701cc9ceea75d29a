package protocol

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Command is implemented only by the types in this package, closing the
// command enumeration the way spec §9's design notes ask for ("prefer a
// tagged enum... the set is closed").
type Command interface {
	commandName() string
}

// Event is the event-side equivalent of Command.
type Event interface {
	eventName() string
}

// TogglePlayCommand requests a pause-state change. PlayState is optional:
// unset means "toggle", set means "go to this explicit state".
type TogglePlayCommand struct {
	PlayState *bool `json:"play_state,omitempty"`
}

func (TogglePlayCommand) commandName() string { return "TOGGLE_PLAY" }

// NextSongCommand requests immediate advancement to the next scheduled
// item (see DESIGN.md for the resolution of this spec Open Question).
type NextSongCommand struct{}

func (NextSongCommand) commandName() string { return "NEXT_SONG" }

// ListSongsCommand requests a page of the library's songs. PageToken and
// MaxNumEntries are optional: an absent PageToken starts from the
// beginning, an absent MaxNumEntries uses pagination.DefaultMaxPageSize
// (spec §4.6).
type ListSongsCommand struct {
	PageToken     string `json:"page_token,omitempty"`
	MaxNumEntries int    `json:"max_num_entries,omitempty"`
}

func (ListSongsCommand) commandName() string { return "LIST_SONGS" }

// ListPlaylistsCommand is the playlist-side equivalent of ListSongsCommand.
type ListPlaylistsCommand struct {
	PageToken     string `json:"page_token,omitempty"`
	MaxNumEntries int    `json:"max_num_entries,omitempty"`
}

func (ListPlaylistsCommand) commandName() string { return "LIST_PLAYLISTS" }

// ErrorEvent reports a failure back to the originating client (spec §3).
type ErrorEvent struct {
	Type               ErrorType `json:"error_type"`
	Message            string    `json:"error_message"`
	Data               string    `json:"error_data,omitempty"`
	Env                ErrorEnv  `json:"error_env"`
	OriginatingCommand string    `json:"originating_command,omitempty"`
}

func (ErrorEvent) eventName() string { return "ERROR" }

// PlayStateEvent reports whether the Player is now actively playing.
type PlayStateEvent struct {
	NewPlayState bool `json:"new_play_state"`
}

func (PlayStateEvent) eventName() string { return "PLAY_STATE" }

// SongPlayingEvent announces which song is now playing.
type SongPlayingEvent struct {
	CurrentSong Song `json:"current_song"`
}

func (SongPlayingEvent) eventName() string { return "SONG_PLAYING" }

// ListSongsEvent answers a LIST_SONGS command. NextPageToken is set only
// when HasMore is true.
type ListSongsEvent struct {
	Songs         []Song `json:"songs"`
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more,omitempty"`
}

func (ListSongsEvent) eventName() string { return "LIST_SONGS" }

// ListPlaylistsEvent is the playlist-side equivalent of ListSongsEvent.
type ListPlaylistsEvent struct {
	Playlists     []Playlist `json:"playlists"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	HasMore       bool       `json:"has_more,omitempty"`
}

func (ListPlaylistsEvent) eventName() string { return "LIST_PLAYLISTS" }

type msgKind int

const (
	kindUnset msgKind = iota
	kindCommand
	kindEvent
)

// Message is the wire envelope: exactly one of a Command or an Event.
type Message struct {
	kind    msgKind
	command Command
	event   Event
}

// WrapCommand builds a Message carrying c.
func WrapCommand(c Command) Message {
	return Message{kind: kindCommand, command: c}
}

// WrapEvent builds a Message carrying e.
func WrapEvent(e Event) Message {
	return Message{kind: kindEvent, event: e}
}

// IsCommand reports whether the message carries a command.
func (m Message) IsCommand() bool { return m.kind == kindCommand }

// IsEvent reports whether the message carries an event.
func (m Message) IsEvent() bool { return m.kind == kindEvent }

// AsCommand returns the carried command, if any.
func (m Message) AsCommand() (Command, bool) {
	if m.kind != kindCommand {
		return nil, false
	}
	return m.command, true
}

// AsEvent returns the carried event, if any.
func (m Message) AsEvent() (Event, bool) {
	if m.kind != kindEvent {
		return nil, false
	}
	return m.event, true
}

// TypeMismatchError reports that Unwrap was asked for a type the Message
// does not actually carry.
type TypeMismatchError struct {
	Wanted string
	Got    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("message does not carry a %s (it carries %s)", e.Wanted, e.Got)
}

// UnwrapCommand returns m's command cast to T, or a TypeMismatchError if m
// does not carry a command of that concrete type. Wrapping is idempotent:
// WrapCommand(t).UnwrapCommand[T]() == t for every command t (spec §8
// item 10).
func UnwrapCommand[T Command](m Message) (T, error) {
	var zero T
	c, ok := m.AsCommand()
	if !ok {
		return zero, &TypeMismatchError{Wanted: fmt.Sprintf("%T", zero), Got: "an event"}
	}
	t, ok := c.(T)
	if !ok {
		return zero, &TypeMismatchError{Wanted: fmt.Sprintf("%T", zero), Got: c.commandName()}
	}
	return t, nil
}

// UnwrapEvent is the event-side equivalent of UnwrapCommand.
func UnwrapEvent[T Event](m Message) (T, error) {
	var zero T
	e, ok := m.AsEvent()
	if !ok {
		return zero, &TypeMismatchError{Wanted: fmt.Sprintf("%T", zero), Got: "a command"}
	}
	t, ok := e.(T)
	if !ok {
		return zero, &TypeMismatchError{Wanted: fmt.Sprintf("%T", zero), Got: e.eventName()}
	}
	return t, nil
}

// MarshalJSON renders the Message as {"command": {...}} or
// {"event": {...}}, with the discriminator field injected as the
// payload's first key and unset optional fields omitted (spec §4.4 rule 4).
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case kindCommand:
		inner, err := marshalDiscriminated("command_name", m.command.commandName(), m.command)
		if err != nil {
			return nil, err
		}
		return wrapField("command", inner)
	case kindEvent:
		inner, err := marshalDiscriminated("event_name", m.event.eventName(), m.event)
		if err != nil {
			return nil, err
		}
		return wrapField("event", inner)
	default:
		return nil, NewClassifiedError(ErrorTypeClient,
			"message must set exactly one of command or event", nil)
	}
}

// UnmarshalJSON parses a wire frame, enforcing exactly-one-of(command,
// event) and a registered discriminator (spec §4.4 rules 1-2).
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewClassifiedError(ErrorTypeClient, "malformed JSON frame", err)
	}

	commandRaw, hasCommand := raw["command"]
	eventRaw, hasEvent := raw["event"]
	if hasCommand == hasEvent {
		return NewClassifiedError(ErrorTypeClient,
			"message must set exactly one of command or event", nil)
	}

	if hasCommand {
		cmd, err := parseCommand(commandRaw)
		if err != nil {
			return err
		}
		m.kind = kindCommand
		m.command = cmd
		return nil
	}

	ev, err := parseEvent(eventRaw)
	if err != nil {
		return err
	}
	m.kind = kindEvent
	m.event = ev
	return nil
}

func parseCommand(data json.RawMessage) (Command, error) {
	var probe struct {
		Name string `json:"command_name"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, NewClassifiedError(ErrorTypeClient, "malformed command payload", err)
	}

	switch probe.Name {
	case "TOGGLE_PLAY":
		var c TogglePlayCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed TOGGLE_PLAY payload", err)
		}
		return c, nil
	case "NEXT_SONG":
		return NextSongCommand{}, nil
	case "LIST_SONGS":
		var c ListSongsCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed LIST_SONGS payload", err)
		}
		return c, nil
	case "LIST_PLAYLISTS":
		var c ListPlaylistsCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed LIST_PLAYLISTS payload", err)
		}
		return c, nil
	default:
		return nil, NewClassifiedError(ErrorTypeClient,
			fmt.Sprintf("Could not find command name '%s'", probe.Name), nil)
	}
}

func parseEvent(data json.RawMessage) (Event, error) {
	var probe struct {
		Name string `json:"event_name"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, NewClassifiedError(ErrorTypeClient, "malformed event payload", err)
	}

	switch probe.Name {
	case "ERROR":
		var e ErrorEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed ERROR payload", err)
		}
		return e, nil
	case "PLAY_STATE":
		var e PlayStateEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed PLAY_STATE payload", err)
		}
		return e, nil
	case "SONG_PLAYING":
		var e SongPlayingEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed SONG_PLAYING payload", err)
		}
		return e, nil
	case "LIST_SONGS":
		var e ListSongsEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed LIST_SONGS payload", err)
		}
		return e, nil
	case "LIST_PLAYLISTS":
		var e ListPlaylistsEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, NewClassifiedError(ErrorTypeClient, "malformed LIST_PLAYLISTS payload", err)
		}
		return e, nil
	default:
		return nil, NewClassifiedError(ErrorTypeClient,
			fmt.Sprintf("Could not find event name '%s'", probe.Name), nil)
	}
}

// marshalDiscriminated marshals payload and injects field=name as the
// first key of the resulting object, preserving the rest of the encoder's
// field order instead of round-tripping through an unordered map.
func marshalDiscriminated(field, name string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	nameJSON, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	prefix := []byte(fmt.Sprintf(`{"%s":%s`, field, nameJSON))
	if len(trimmed) <= 2 { // "{}"
		return append(prefix, '}'), nil
	}
	rest := trimmed[1:] // drop payload's own leading '{', keep its trailing '}'
	out := make([]byte, 0, len(prefix)+1+len(rest))
	out = append(out, prefix...)
	out = append(out, ',')
	out = append(out, rest...)
	return out, nil
}

func wrapField(field string, inner []byte) ([]byte, error) {
	out := make([]byte, 0, len(field)+len(inner)+6)
	out = append(out, '{')
	out = append(out, '"')
	out = append(out, field...)
	out = append(out, '"', ':')
	out = append(out, inner...)
	out = append(out, '}')
	return out, nil
}
