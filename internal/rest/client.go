// Package rest runs one-shot HTTP requests on background goroutines and
// delivers each outcome as a single response keyed by an opaque request id,
// so several in-flight requests multiplex onto one callback stream.
package rest

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Response is the single event produced per request. A transport-level
// failure sets Err; HTTP error statuses do not — callers inspect Status.
type Response struct {
	RequestID string
	Status    int
	Body      []byte
	Err       error
}

// Client issues requests with a shared http.Client and hands results to a
// deliver callback. The callback runs off the consumer thread and must only
// enqueue.
type Client struct {
	http    *http.Client
	deliver func(Response)
	logger  *log.Logger
}

// New constructs a client. A nil httpClient gets a default with a request
// timeout; a nil logger falls back to the process default.
func New(httpClient *http.Client, deliver func(Response), logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{http: httpClient, deliver: deliver, logger: logger}
}

// NewRequestID returns a fresh opaque request id.
func NewRequestID() string {
	return uuid.NewString()
}

// Do issues the request asynchronously. The deliver callback fires exactly
// once with the given request id.
func (c *Client) Do(requestID, method, url string, headers map[string]string, body []byte) {
	go func() {
		resp := c.roundTrip(requestID, method, url, headers, body)
		if c.deliver != nil {
			c.deliver(resp)
		}
	}()
}

func (c *Client) roundTrip(requestID, method, url string, headers map[string]string, body []byte) Response {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return Response{RequestID: requestID, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return Response{RequestID: requestID, Err: err}
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.Printf("failed to read response body for %s %s: %v", method, url, err)
		return Response{RequestID: requestID, Status: httpResp.StatusCode, Err: err}
	}
	return Response{RequestID: requestID, Status: httpResp.StatusCode, Body: payload}
}
