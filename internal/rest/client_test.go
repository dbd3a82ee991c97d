package rest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu        sync.Mutex
	responses []Response
}

func (c *collector) deliver(resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
}

func (c *collector) waitForOne(t *testing.T) Response {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		n := len(c.responses)
		c.mu.Unlock()
		if n > 0 {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.responses[0]
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("no response delivered within the deadline")
	return Response{}
}

func TestDoDeliversBodyAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	col := &collector{}
	client := New(nil, col.deliver, nil)

	client.Do("req-1", http.MethodGet, srv.URL, nil, nil)

	resp := col.waitForOne(t)
	if resp.RequestID != "req-1" {
		t.Fatalf("request id lost: %q", resp.RequestID)
	}
	if resp.Err != nil {
		t.Fatalf("unexpected transport error: %v", resp.Err)
	}
	if resp.Status != http.StatusCreated || string(resp.Body) != `{"ok":true}` {
		t.Fatalf("unexpected response: %d %s", resp.Status, resp.Body)
	}
}

func TestErrorStatusIsNotATransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	col := &collector{}
	client := New(nil, col.deliver, nil)

	client.Do("req-1", http.MethodGet, srv.URL, nil, nil)

	resp := col.waitForOne(t)
	if resp.Err != nil {
		t.Fatalf("4xx must not set Err: %v", resp.Err)
	}
	if resp.Status != http.StatusUnauthorized {
		t.Fatalf("status lost: %d", resp.Status)
	}
}

func TestUnreachableHostSetsErr(t *testing.T) {
	col := &collector{}
	client := New(&http.Client{Timeout: time.Second}, col.deliver, nil)

	client.Do("req-1", http.MethodGet, "http://127.0.0.1:1/unreachable", nil, nil)

	resp := col.waitForOne(t)
	if resp.Err == nil {
		t.Fatalf("expected a transport error for an unreachable host")
	}
}

func TestBodyGetsJSONContentType(t *testing.T) {
	var gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	t.Cleanup(srv.Close)

	col := &collector{}
	client := New(nil, col.deliver, nil)

	client.Do("req-1", http.MethodPost, srv.URL, nil, []byte(`{"a":1}`))
	col.waitForOne(t)

	if gotType != "application/json" {
		t.Fatalf("default content type missing: %q", gotType)
	}
	if string(gotBody) != `{"a":1}` {
		t.Fatalf("body not forwarded: %s", gotBody)
	}
}

func TestExplicitHeadersWin(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
	}))
	t.Cleanup(srv.Close)

	col := &collector{}
	client := New(nil, col.deliver, nil)

	client.Do("req-1", http.MethodPost, srv.URL, map[string]string{
		"Authorization": "Bearer abc",
		"Content-Type":  "text/plain",
	}, []byte("hello"))
	col.waitForOne(t)

	if gotAuth != "Bearer abc" {
		t.Fatalf("authorization header lost: %q", gotAuth)
	}
	if gotType != "text/plain" {
		t.Fatalf("explicit content type overridden: %q", gotType)
	}
}

func TestNewRequestIDIsUnique(t *testing.T) {
	if NewRequestID() == NewRequestID() {
		t.Fatalf("request ids must not collide")
	}
}
