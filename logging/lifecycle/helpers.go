package lifecycle

import (
	"context"

	"playlink/client/logging"
)

const (
	// EventStateChanged is emitted on every interactivity state transition.
	EventStateChanged logging.EventType = "lifecycle.state_changed"
	// EventParticipantChanged is emitted when a participant joins, leaves,
	// or has input toggled.
	EventParticipantChanged logging.EventType = "lifecycle.participant_changed"
	// EventDisposed is emitted once when the facade shuts down.
	EventDisposed logging.EventType = "lifecycle.disposed"
)

// StatePayload carries the transition endpoints as strings.
type StatePayload struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// ParticipantPayload carries the participant transition.
type ParticipantPayload struct {
	UserID uint32 `json:"userId"`
	State  string `json:"state"`
}

func StateChanged(ctx context.Context, pub logging.Publisher, tick uint64, payload StatePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStateChanged,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func ParticipantChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ParticipantPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventParticipantChanged,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func Disposed(ctx context.Context, pub logging.Publisher, tick uint64, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDisposed,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  map[string]any{"reason": reason},
	})
}
