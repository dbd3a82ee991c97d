package network

import (
	"context"

	"playlink/client/logging"
)

const (
	// EventSocketOpened is emitted when the interactive websocket opens.
	EventSocketOpened logging.EventType = "network.socket_opened"
	// EventSocketClosed is emitted when the websocket closes for any reason.
	EventSocketClosed logging.EventType = "network.socket_closed"
	// EventSocketError is emitted for transport-level failures.
	EventSocketError logging.EventType = "network.socket_error"
	// EventDiscovery is emitted when endpoint discovery completes or fails.
	EventDiscovery logging.EventType = "network.discovery"
	// EventReconnectArmed is emitted when the reconnect timer is armed.
	EventReconnectArmed logging.EventType = "network.reconnect_armed"
)

// ClosePayload captures the close code and server-supplied reason.
type ClosePayload struct {
	Code   int    `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// DiscoveryPayload captures the resolved endpoint, empty on failure.
type DiscoveryPayload struct {
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SocketOpened publishes an info event for a freshly opened connection.
func SocketOpened(ctx context.Context, pub logging.Publisher, tick uint64, address string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSocketOpened,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: address, Kind: logging.EntityKindService},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
	})
}

// SocketClosed publishes a close event; fatal close codes are warnings.
func SocketClosed(ctx context.Context, pub logging.Publisher, tick uint64, payload ClosePayload, fatal bool) {
	if pub == nil {
		return
	}
	severity := logging.SeverityInfo
	if fatal {
		severity = logging.SeverityWarn
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSocketClosed,
		Tick:     tick,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// SocketError publishes a transport failure.
func SocketError(ctx context.Context, pub logging.Publisher, tick uint64, message string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSocketError,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  map[string]any{"message": message},
	})
}

// Discovery publishes the outcome of an endpoint discovery attempt.
func Discovery(ctx context.Context, pub logging.Publisher, tick uint64, payload DiscoveryPayload) {
	if pub == nil {
		return
	}
	severity := logging.SeverityInfo
	if payload.Error != "" {
		severity = logging.SeverityWarn
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDiscovery,
		Tick:     tick,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// ReconnectArmed publishes a debug event when the reconnect timer arms.
func ReconnectArmed(ctx context.Context, pub logging.Publisher, tick uint64, intervalMillis int64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReconnectArmed,
		Tick:     tick,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  map[string]any{"intervalMillis": intervalMillis},
	})
}
