package ws

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 15 * time.Second
)

// Handlers carries the callbacks invoked from the transport's reader
// goroutine. Callbacks must only enqueue; they run off the consumer thread.
type Handlers struct {
	OnOpen    func()
	OnMessage func(text string)
	OnError   func(message string)
	OnClose   func(code int, reason string)
}

// Transport is a text-frame websocket client. A single Transport can be
// opened and closed repeatedly; each Open replaces the previous connection.
type Transport struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	writeMu  sync.Mutex
	handlers Handlers
	dialer   *websocket.Dialer
	logger   *log.Logger
	gen      uint64
}

// New constructs a transport with the given callbacks. A nil logger falls
// back to the process default.
func New(handlers Handlers, logger *log.Logger) *Transport {
	if logger == nil {
		logger = log.Default()
	}
	return &Transport{
		handlers: handlers,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger,
	}
}

// Open dials the endpoint asynchronously. A failed dial fires OnError; a
// successful one fires OnOpen, unless a later Open or Close has superseded
// it, in which case the connection is dropped and neither fires. After
// OnOpen the reader loop delivers OnMessage until OnClose.
func (t *Transport) Open(url string, header http.Header) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.mu.Unlock()

	go t.dial(gen, url, header)
}

func (t *Transport) dial(gen uint64, url string, header http.Header) {
	conn, resp, err := t.dialer.Dial(url, header)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		if t.handlers.OnError != nil {
			t.handlers.OnError(fmt.Sprintf("dial %s failed (status %d): %v", url, status, err))
		}
		return
	}

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.mu.Unlock()

	if t.handlers.OnOpen != nil {
		t.handlers.OnOpen()
	}
	t.readLoop(gen, conn)
}

func (t *Transport) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			stale := gen != t.gen
			if !stale && t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			if stale {
				return
			}
			code, reason := closeDetails(err)
			if t.handlers.OnClose != nil {
				t.handlers.OnClose(code, reason)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if t.handlers.OnMessage != nil {
			t.handlers.OnMessage(string(payload))
		}
	}
}

func closeDetails(err error) (int, string) {
	if closeErr, ok := err.(*websocket.CloseError); ok {
		return closeErr.Code, closeErr.Text
	}
	return websocket.CloseAbnormalClosure, err.Error()
}

// Send writes a text frame. Returns an error when no connection is open.
func (t *Transport) Send(text string) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("send on closed transport")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("write text frame: %w", err)
	}
	return nil
}

// Connected reports whether a connection is currently open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close sends a close frame with the given reason and tears the connection
// down. Safe to call when already closed.
func (t *Transport) Close(code int, reason string) {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.gen++
	t.mu.Unlock()
	if conn == nil {
		return
	}

	t.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	message := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteMessage(websocket.CloseMessage, message); err != nil {
		t.logger.Printf("failed to send close frame: %v", err)
	}
	t.writeMu.Unlock()
	conn.Close()
}
