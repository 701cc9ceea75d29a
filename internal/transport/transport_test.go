package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies no goroutine started by the muxer's frame loops
// outlives the tests that spawned them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type echoHandler struct {
	onAccept func(text []byte, session *ClientSession) error
}

func (h *echoHandler) Accept(text []byte, session *ClientSession) error {
	return h.onAccept(text, session)
}

func dial(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, *http.Response) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	return conn, resp
}

func TestUnsupportedPathCloses(t *testing.T) {
	mux := NewMuxer()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _ := dial(t, srv, "/florgus")
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, CloseUnsupportedURI, closeErr.Code)
	assert.Contains(t, closeErr.Text, "path '/florgus' not found")
}

func TestEchoRoundTrip(t *testing.T) {
	mux := NewMuxer()
	require.NoError(t, mux.Register("/echo", &echoHandler{
		onAccept: func(text []byte, session *ClientSession) error {
			return session.Send(append([]byte("echo:"), text...))
		},
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _ := dial(t, srv, "/echo")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(data))
}

// TestBroadcastReachesAllSessions pins the SONG_PLAYING broadcast wiring:
// every connection on a path receives a Broadcast, not just the one that
// triggered it.
func TestBroadcastReachesAllSessions(t *testing.T) {
	mux := NewMuxer()
	require.NoError(t, mux.Register("/echo", &echoHandler{
		onAccept: func([]byte, *ClientSession) error { return nil },
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	connA, _ := dial(t, srv, "/echo")
	defer connA.Close()
	connB, _ := dial(t, srv, "/echo")
	defer connB.Close()

	// give the server goroutines a chance to register both sessions
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte("hi")))
	time.Sleep(10 * time.Millisecond)

	mux.Broadcast("/echo", []byte("announcement"))

	_, dataA, err := connA.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "announcement", string(dataA))

	_, dataB, err := connB.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "announcement", string(dataB))
}

func TestBinaryFrameRejected(t *testing.T) {
	mux := NewMuxer()
	require.NoError(t, mux.Register("/echo", &echoHandler{
		onAccept: func([]byte, *ClientSession) error { return nil },
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _ := dial(t, srv, "/echo")
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, CloseBadClient, closeErr.Code)
}

func TestClientErrorClosesWithReason(t *testing.T) {
	mux := NewMuxer()
	require.NoError(t, mux.Register("/echo", &echoHandler{
		onAccept: func([]byte, *ClientSession) error {
			return &ClientError{Reason: "malformed payload"}
		},
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _ := dial(t, srv, "/echo")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("x")))

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, CloseBadClient, closeErr.Code)
	assert.Equal(t, "malformed payload", closeErr.Text)
}

func TestCloseConnectionSignal(t *testing.T) {
	mux := NewMuxer()
	require.NoError(t, mux.Register("/echo", &echoHandler{
		onAccept: func([]byte, *ClientSession) error { return CloseConnection },
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _ := dial(t, srv, "/echo")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("x")))

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
}

func TestInvalidRegisterPathRejected(t *testing.T) {
	mux := NewMuxer()
	err := mux.Register("/bad-path!", &echoHandler{onAccept: func([]byte, *ClientSession) error { return nil }})
	var target *InvalidPathError
	require.ErrorAs(t, err, &target)
}

func TestTruncateReasonWordBoundary(t *testing.T) {
	reason := strings.Repeat("word ", 40) // well over 125 bytes
	out := truncateReason(reason)
	assert.LessOrEqual(t, len(out), 125)
	assert.True(t, strings.HasSuffix(out, " <trunc>"))
}

func TestTruncateReasonUnderLimitUnchanged(t *testing.T) {
	assert.Equal(t, "short", truncateReason("short"))
}

func TestHandlerBugDoesNotCrashMuxer(t *testing.T) {
	mux := NewMuxer()
	calls := 0
	require.NoError(t, mux.Register("/echo", &echoHandler{
		onAccept: func(text []byte, session *ClientSession) error {
			calls++
			if calls == 1 {
				return assertUnexpected
			}
			return session.Send([]byte("ok"))
		},
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _ := dial(t, srv, "/echo")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("first")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("second")))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

var assertUnexpected = &unexpectedError{}

type unexpectedError struct{}

func (e *unexpectedError) Error() string { return "boom" }
