// Package mediaserver binds the wire protocol to the Controller: it
// parses incoming frames, dispatches each command to the matching
// Controller operation, emits the resulting event, and is the sole point
// that applies the production-redaction rule to an error before it
// reaches a client (spec §4.6). It implements transport.Handler, playing
// the role the teacher's internal/mpd/router.go plays for MPD text
// commands, generalized to JSON command dispatch with pagination and
// error-taxonomy handling router.go never needed.
package mediaserver

import (
	"errors"

	json "github.com/goccy/go-json"

	"github.com/quietloop/noisebox/internal/controller"
	"github.com/quietloop/noisebox/internal/library"
	"github.com/quietloop/noisebox/internal/metrics"
	"github.com/quietloop/noisebox/internal/oracle"
	"github.com/quietloop/noisebox/internal/pagination"
	"github.com/quietloop/noisebox/internal/protocol"
	"github.com/quietloop/noisebox/internal/transport"
)

// Server dispatches wire commands to a Controller and a Library snapshot.
// Debug controls whether emitted ErrorEvents are redacted (spec §3).
//
// Page tokens are self-describing (they embed the list's hash and an
// element index, see internal/pagination), so the Server itself keeps no
// per-client paging state — resolving the "shared vs. per-session page
// token namespace" Open Question: there is no namespace to share or
// partition, a token is valid wherever it is presented as long as the
// list it names hasn't changed (see DESIGN.md).
type Server struct {
	ctrl  *controller.Controller
	lib   *library.Library
	Debug bool

	mux  *transport.Muxer
	path string
}

// New builds a Server over ctrl and lib. If mux is non-nil, the Server
// registers itself as ctrl's song-change hook and broadcasts SONG_PLAYING
// to every session connected to mux at path whenever the Controller
// starts a track on its own — an end-of-track advance or NEXT_SONG —
// rather than only replying to the session that asked (spec's closed
// event enumeration lists SONG_PLAYING as a broadcast-only event; nothing
// in the dispatch table ever emits it as a reply, per DESIGN.md).
func New(ctrl *controller.Controller, lib *library.Library, debug bool, mux *transport.Muxer, path string) *Server {
	s := &Server{
		ctrl:  ctrl,
		lib:   lib,
		Debug: debug,
		mux:   mux,
		path:  path,
	}
	if mux != nil {
		ctrl.OnSongChange(s.broadcastSongPlaying)
	}
	return s
}

func (s *Server) broadcastSongPlaying(item oracle.Item) {
	song, err := s.lib.GetSong(item.Alias)
	if err != nil {
		song = library.Song{Alias: item.Alias, URI: item.URI}
	}
	ev := protocol.SongPlayingEvent{
		CurrentSong: protocol.Song{
			Name:        song.Alias,
			Description: song.Description,
			LocalPath:   song.URI,
		},
	}
	data, err := json.Marshal(protocol.WrapEvent(ev))
	if err != nil {
		return
	}
	metrics.EventsSent.WithLabelValues("SONG_PLAYING").Inc()
	s.mux.Broadcast(s.path, data)
}

// Accept implements transport.Handler.
func (s *Server) Accept(raw []byte, session *transport.ClientSession) error {
	var msg protocol.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return s.emitParseError(session, err, string(raw))
	}

	if ev, ok := msg.AsEvent(); ok {
		return s.handleEvent(ev, session, string(raw))
	}

	cmd, _ := msg.AsCommand()
	return s.dispatch(cmd, session, string(raw))
}

func (s *Server) emitParseError(session *transport.ClientSession, err error, raw string) error {
	var classified *protocol.ClassifiedError
	if !errors.As(err, &classified) {
		classified = protocol.NewClassifiedError(protocol.ErrorTypeClient, "malformed message", err)
	}
	return s.sendError(session, classified, raw)
}

// handleEvent routes an inbound Event. Clients are only expected to send
// ERROR events (e.g. acknowledging a prior one); anything else is an
// unsupported message type (spec §4.6 item 2).
func (s *Server) handleEvent(ev protocol.Event, session *transport.ClientSession, raw string) error {
	if errEv, ok := ev.(protocol.ErrorEvent); ok {
		metrics.EventsSent.WithLabelValues("ERROR_ACK").Inc()
		_ = errEv
		return nil
	}
	classified := protocol.NewClassifiedError(protocol.ErrorTypeClient,
		"unsupported message type received from client", nil)
	return s.sendError(session, classified, raw)
}

func (s *Server) dispatch(cmd protocol.Command, session *transport.ClientSession, raw string) error {
	defer func() {
		if r := recover(); r != nil {
			classified := protocol.NewClassifiedError(protocol.ErrorTypeInternal, "panic in handler", nil).
				WithData(panicMessage(r))
			_ = s.sendError(session, classified, raw)
		}
	}()

	var (
		event protocol.Event
		err   error
	)

	switch c := cmd.(type) {
	case protocol.TogglePlayCommand:
		event, err = s.handleTogglePlay(c)
	case protocol.NextSongCommand:
		event, err = s.handleNextSong()
	case protocol.ListSongsCommand:
		event, err = s.handleListSongs(c)
	case protocol.ListPlaylistsCommand:
		event, err = s.handleListPlaylists(c)
	default:
		err = protocol.NewClassifiedError(protocol.ErrorTypeClient, "unrecognized command payload", nil)
	}

	metrics.CommandsReceived.WithLabelValues(commandName(cmd)).Inc()

	if err != nil {
		var classified *protocol.ClassifiedError
		if !errors.As(err, &classified) {
			classified = protocol.NewClassifiedError(protocol.ErrorTypeInternal, err.Error(), err)
		}
		return s.sendError(session, classified, raw)
	}

	return s.sendEvent(session, event)
}

func (s *Server) handleTogglePlay(c protocol.TogglePlayCommand) (protocol.Event, error) {
	if c.PlayState == nil {
		s.ctrl.TogglePause()
	} else {
		s.ctrl.SetPause(!*c.PlayState)
	}
	return protocol.PlayStateEvent{NewPlayState: s.ctrl.Playing()}, nil
}

func (s *Server) handleNextSong() (protocol.Event, error) {
	if err := s.ctrl.NextSong(); err != nil {
		return nil, protocol.NewClassifiedError(protocol.ErrorTypeFailure, err.Error(), err)
	}
	return protocol.PlayStateEvent{NewPlayState: s.ctrl.Playing()}, nil
}

func (s *Server) handleListSongs(c protocol.ListSongsCommand) (protocol.Event, error) {
	songs := s.lib.ListSongs()
	page, err := pagination.GetPage(songs, func(sg library.Song) string { return sg.Alias }, c.PageToken, c.MaxNumEntries)
	if err != nil {
		return nil, paginationError(err)
	}

	wire := make([]protocol.Song, len(page.Items))
	for i, song := range page.Items {
		wire[i] = protocol.Song{Name: song.Alias, Description: song.Description, LocalPath: song.URI}
	}
	return protocol.ListSongsEvent{Songs: wire, NextPageToken: page.NextToken, HasMore: page.HasMore}, nil
}

func (s *Server) handleListPlaylists(c protocol.ListPlaylistsCommand) (protocol.Event, error) {
	playlists := s.lib.ListPlaylists()
	page, err := pagination.GetPage(playlists, func(pl library.Playlist) string { return pl.Name }, c.PageToken, c.MaxNumEntries)
	if err != nil {
		return nil, paginationError(err)
	}

	wire := make([]protocol.Playlist, len(page.Items))
	for i, pl := range page.Items {
		wire[i] = protocol.Playlist{
			Name:        pl.Name,
			Description: pl.Description,
			Metadata:    pl.Metadata,
			Songs:       pl.Aliases,
		}
	}
	return protocol.ListPlaylistsEvent{Playlists: wire, NextPageToken: page.NextToken, HasMore: page.HasMore}, nil
}

func paginationError(err error) error {
	var listChanged *pagination.ListChangedError
	if errors.As(err, &listChanged) {
		return protocol.NewClassifiedError(protocol.ErrorTypeClient, "list changed since last page", err)
	}
	return protocol.NewClassifiedError(protocol.ErrorTypeClient, "invalid page token", err)
}

func (s *Server) sendEvent(session *transport.ClientSession, event protocol.Event) error {
	metrics.EventsSent.WithLabelValues(eventName(event)).Inc()
	data, err := json.Marshal(protocol.WrapEvent(event))
	if err != nil {
		return err
	}
	return session.Send(data)
}

// sendError applies the production-redaction rule (spec §3) before
// emitting, unless s.Debug is set. This is the sole redaction point:
// nothing upstream of Server ever scrubs an error.
func (s *Server) sendError(session *transport.ClientSession, classified *protocol.ClassifiedError, raw string) error {
	ev := classified.ToErrorEvent(raw)
	ev = protocol.Redact(ev, s.Debug)
	metrics.ErrorsEmitted.WithLabelValues(ev.Type.String()).Inc()
	return s.sendEvent(session, ev)
}

func commandName(cmd protocol.Command) string {
	switch cmd.(type) {
	case protocol.TogglePlayCommand:
		return "TOGGLE_PLAY"
	case protocol.NextSongCommand:
		return "NEXT_SONG"
	case protocol.ListSongsCommand:
		return "LIST_SONGS"
	case protocol.ListPlaylistsCommand:
		return "LIST_PLAYLISTS"
	default:
		return "UNKNOWN"
	}
}

func eventName(ev protocol.Event) string {
	switch ev.(type) {
	case protocol.ErrorEvent:
		return "ERROR"
	case protocol.PlayStateEvent:
		return "PLAY_STATE"
	case protocol.SongPlayingEvent:
		return "SONG_PLAYING"
	case protocol.ListSongsEvent:
		return "LIST_SONGS"
	case protocol.ListPlaylistsEvent:
		return "LIST_PLAYLISTS"
	default:
		return "UNKNOWN"
	}
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "panic"
}
