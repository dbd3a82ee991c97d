package authflow

import (
	"context"

	"playlink/client/logging"
)

const (
	// EventShortCodeIssued is emitted when the service grants a short code.
	EventShortCodeIssued logging.EventType = "auth.short_code_issued"
	// EventExchangeCompleted is emitted when the exchange code converts to tokens.
	EventExchangeCompleted logging.EventType = "auth.exchange_completed"
	// EventTokenRefreshed is emitted after a successful refresh grant.
	EventTokenRefreshed logging.EventType = "auth.token_refreshed"
	// EventTokenVerified is emitted after a verify round-trip.
	EventTokenVerified logging.EventType = "auth.token_verified"
	// EventFlowFailed is emitted when a step of the OAuth flow fails.
	EventFlowFailed logging.EventType = "auth.flow_failed"
)

// ShortCodePayload carries the code lifetime, never the code itself.
type ShortCodePayload struct {
	ExpiresIn int `json:"expiresIn"`
}

// VerifyPayload carries the verify outcome.
type VerifyPayload struct {
	Status int  `json:"status"`
	Valid  bool `json:"valid"`
}

// FailurePayload names the failing step and the HTTP status when known.
type FailurePayload struct {
	Step   string `json:"step"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

func ShortCodeIssued(ctx context.Context, pub logging.Publisher, tick uint64, payload ShortCodePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventShortCodeIssued,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAuth,
		Payload:  payload,
	})
}

func ExchangeCompleted(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExchangeCompleted,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAuth,
	})
}

func TokenRefreshed(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTokenRefreshed,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAuth,
	})
}

func TokenVerified(ctx context.Context, pub logging.Publisher, tick uint64, payload VerifyPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTokenVerified,
		Tick:     tick,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryAuth,
		Payload:  payload,
	})
}

func FlowFailed(ctx context.Context, pub logging.Publisher, tick uint64, payload FailurePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFlowFailed,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryAuth,
		Payload:  payload,
	})
}
