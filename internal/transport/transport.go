// Package transport implements the persistent bidirectional text-frame
// muxer (spec §4.5): path-based routing to registered handlers, binary
// frame rejection, and handler control-flow signaled via sentinel error
// types (CloseConnection, ClientError) instead of exceptions. It is
// grounded in the domain stack's gorilla/websocket usage, with the
// path-routing table itself adapted from the teacher's idle-connection
// bookkeeping in internal/mpd/idle.go (a map keyed by a client-identifying
// string, guarded by one mutex).
package transport

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quietloop/noisebox/internal/logging"
	"github.com/quietloop/noisebox/internal/metrics"
)

// Close codes outside the standard range (RFC 6455 §7.4.2 reserves
// 4000-4999 for private use).
const (
	CloseUnsupportedURI = 4040
	CloseBadClient      = 4400
)

var pathPattern = regexp.MustCompile(`^/?\w*(/\w*)*/?$`)

// InvalidPathError reports a path registered against the Muxer that does
// not match the allowed path grammar.
type InvalidPathError struct{ Path string }

func (e *InvalidPathError) Error() string { return fmt.Sprintf("invalid path pattern: %q", e.Path) }

// CloseConnection is a handler control signal: close the connection
// normally. It carries no information; returning it from Handler.Accept
// is equivalent to the source's CloseConnectionException.
var CloseConnection = errors.New("close connection")

// ClientError is a handler control signal: the peer violated the
// protocol. The connection closes with CloseBadClient and Reason as the
// (truncated) close reason.
type ClientError struct{ Reason string }

func (e *ClientError) Error() string { return e.Reason }

// ClientSession is the write side of one connected peer (spec §3). It is
// created on connect and is valid only until the connection closes. ID
// is a per-connection identifier used only in log fields, grounded in
// cartographus's use of google/uuid for the same purpose.
type ClientSession struct {
	conn *websocket.Conn
	mu   sync.Mutex

	ID uuid.UUID
}

// Send writes data as a single text frame. Concurrent sends on the same
// session are serialized.
func (s *ClientSession) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Handler is bound to one registered path. Accept is called once per
// received text frame, in strict receive order for a given connection;
// it must not block (spec §4.5) and may send zero, one, or many messages
// via session before returning. A non-nil return of CloseConnection or
// *ClientError is a control signal handled by the Muxer; any other error
// is logged as a handler bug without crashing the process.
type Handler interface {
	Accept(text []byte, session *ClientSession) error
}

// Muxer routes connections by URL path to a registered Handler. It also
// doubles as a broadcast hub, keyed by the same path: a handler can reach
// every connection on its own path without keeping its own registry,
// adapted from the teacher's idleConnection/NotifySubsystemChange
// registration pattern (internal/mpd/idle.go) — a per-path set of live
// sessions guarded by one mutex in place of idle.go's per-subsystem one.
type Muxer struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	upgrader websocket.Upgrader

	sessMu   sync.RWMutex
	sessions map[string]map[*ClientSession]bool
}

// NewMuxer returns an empty Muxer.
func NewMuxer() *Muxer {
	return &Muxer{
		handlers: make(map[string]Handler),
		sessions: make(map[string]map[*ClientSession]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Register binds h to path. It fails with InvalidPathError if path does
// not match the allowed grammar.
func (m *Muxer) Register(path string, h Handler) error {
	if !pathPattern.MatchString(path) {
		return &InvalidPathError{Path: path}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = h
	return nil
}

func (m *Muxer) lookup(path string) (Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handlers[path]
	return h, ok
}

// ServeHTTP upgrades the connection and drives its frame loop. It
// satisfies http.Handler so it can be mounted directly on a chi router.
func (m *Muxer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.L().Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	handler, ok := m.lookup(r.URL.Path)
	if !ok {
		reason := truncateReason(fmt.Sprintf("path '%s' not found", r.URL.Path))
		closeWithReason(conn, CloseUnsupportedURI, reason)
		return
	}

	session := &ClientSession{conn: conn, ID: uuid.New()}
	logging.L().Debug().Str("session", session.ID.String()).Str("path", r.URL.Path).Msg("client connected")
	defer logging.L().Debug().Str("session", session.ID.String()).Msg("client disconnected")

	m.registerSession(r.URL.Path, session)
	defer m.unregisterSession(r.URL.Path, session)

	m.frameLoop(conn, handler, session)
}

func (m *Muxer) registerSession(path string, session *ClientSession) {
	m.sessMu.Lock()
	defer m.sessMu.Unlock()
	if m.sessions[path] == nil {
		m.sessions[path] = make(map[*ClientSession]bool)
	}
	m.sessions[path][session] = true
	metrics.ConnectionsActive.Inc()
}

func (m *Muxer) unregisterSession(path string, session *ClientSession) {
	m.sessMu.Lock()
	defer m.sessMu.Unlock()
	delete(m.sessions[path], session)
	metrics.ConnectionsActive.Dec()
}

// Broadcast sends data to every session currently connected on path. Send
// failures on an individual session are logged and otherwise ignored —
// that session's own read loop will observe the same failure and close.
func (m *Muxer) Broadcast(path string, data []byte) {
	m.sessMu.RLock()
	targets := make([]*ClientSession, 0, len(m.sessions[path]))
	for s := range m.sessions[path] {
		targets = append(targets, s)
	}
	m.sessMu.RUnlock()

	for _, s := range targets {
		if err := s.Send(data); err != nil {
			logging.L().Debug().Str("session", s.ID.String()).Err(err).Msg("broadcast send failed")
		}
	}
}

func (m *Muxer) frameLoop(conn *websocket.Conn, handler Handler, session *ClientSession) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return // peer closed, or a transport-level error; nothing more to do
		}

		if msgType == websocket.BinaryMessage {
			closeWithReason(conn, CloseBadClient, truncateReason("binary frames are not supported"))
			return
		}

		err = handler.Accept(data, session)
		switch {
		case err == nil:
			continue
		case errors.Is(err, CloseConnection):
			closeWithReason(conn, websocket.CloseNormalClosure, "")
			return
		default:
			var clientErr *ClientError
			if errors.As(err, &clientErr) {
				closeWithReason(conn, CloseBadClient, truncateReason(clientErr.Reason))
				return
			}
			// Any other error escaping the handler is a handler bug; the
			// muxer must not crash the process, only surface it via logs.
			logging.L().Error().Err(err).Msg("handler returned an unexpected error")
		}
	}
}

func closeWithReason(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
}

// truncateReason enforces the ≤125-byte close-reason limit from spec
// §4.5, truncating on a word boundary and appending " <trunc>" when
// truncation occurred. The usable budget is 123, not 125: a close control
// frame's 2-byte status code counts against the same 125-byte control
// frame payload the reason text shares.
func truncateReason(reason string) string {
	const limit = 123
	const suffix = " <trunc>"

	if len(reason) <= limit {
		return reason
	}

	budget := limit - len(suffix)
	cut := budget
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	if idx := lastSpace(reason[:cut]); idx > 0 {
		cut = idx
	}
	return reason[:cut] + suffix
}

func lastSpace(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}
