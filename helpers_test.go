package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"playlink/client/internal/tokenstore"
	"playlink/client/logging"
)

type fakeTransport struct {
	opened     []string
	lastHeader http.Header
	sent       []string
	closed     bool
	online     bool
}

func (f *fakeTransport) Open(url string, header http.Header) {
	f.opened = append(f.opened, url)
	f.lastHeader = header
}

func (f *fakeTransport) Send(text string) error {
	if !f.online {
		return fmt.Errorf("send on closed transport")
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeTransport) Close(code int, reason string) {
	f.closed = true
	f.online = false
}

func (f *fakeTransport) Connected() bool {
	return f.online
}

// sentMethods decodes the method name out of every frame the fake saw.
func (f *fakeTransport) sentMethods(t *testing.T) []string {
	t.Helper()
	methods := make([]string, 0, len(f.sent))
	for _, raw := range f.sent {
		var frame struct {
			Method string `json:"method"`
		}
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			t.Fatalf("sent frame is not valid JSON: %v", err)
		}
		methods = append(methods, frame.Method)
	}
	return methods
}

func newTestClient(t *testing.T, apiBase string) (*Client, *fakeTransport) {
	t.Helper()
	c, err := New(Options{
		ClientID:         "test-client",
		APIBase:          apiBase,
		AppID:            "app",
		ProjectVersionID: "version",
		TokenStore:       tokenstore.NewMemory(),
		Publisher:        logging.NopPublisher(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	transport := &fakeTransport{online: true}
	c.transport = transport
	t.Cleanup(c.Dispose)
	return c, transport
}

// pushServerFrame enqueues a frame as if the transport read it.
func pushServerFrame(c *Client, frame string) {
	c.pump.push(wsMessageItem{text: frame})
}

func methodFrame(method string, params any) string {
	raw, _ := json.Marshal(params)
	if params == nil {
		raw = []byte(`{}`)
	}
	return fmt.Sprintf(`{"type":"method","method":%q,"params":%s}`, method, raw)
}

func replyFrame(id uint32, result any) string {
	raw, _ := json.Marshal(result)
	if result == nil {
		raw = []byte(`{}`)
	}
	return fmt.Sprintf(`{"type":"reply","id":%d,"result":%s}`, id, raw)
}

// pumpUntil calls DoWork until cond holds or the deadline passes.
func pumpUntil(t *testing.T, c *Client, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.DoWork()
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// joinParticipant seeds the mirror with one connected viewer.
func joinParticipant(c *Client, sessionID string, userID uint32) {
	c.applyParticipantJoin(participantsPayload{Participants: []participantEntry{{
		SessionID: sessionID,
		UserID:    userID,
		Username:  fmt.Sprintf("viewer-%d", userID),
		GroupID:   DefaultGroupID,
	}}})
	c.outbox = nil
}
