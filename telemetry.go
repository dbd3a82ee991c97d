package client

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

type telemetryCounters struct {
	framesSent       atomic.Uint64
	framesReceived   atomic.Uint64
	repliesMatched   atomic.Uint64
	repliesUnmatched atomic.Uint64
	buttonInputs     atomic.Uint64
	joystickInputs   atomic.Uint64
	pumpTicks        atomic.Uint64
	pumpDurationMS   atomic.Int64
	reconnects       atomic.Uint64
	tokenRefreshes   atomic.Uint64
	debug            bool
}

// TelemetrySnapshot is a point-in-time copy of the client's counters.
type TelemetrySnapshot struct {
	FramesSent       uint64 `json:"framesSent"`
	FramesReceived   uint64 `json:"framesReceived"`
	RepliesMatched   uint64 `json:"repliesMatched"`
	RepliesUnmatched uint64 `json:"repliesUnmatched"`
	ButtonInputs     uint64 `json:"buttonInputs"`
	JoystickInputs   uint64 `json:"joystickInputs"`
	PumpTicks        uint64 `json:"pumpTicks"`
	PumpDurationMS   int64  `json:"pumpDurationMillis"`
	Reconnects       uint64 `json:"reconnects"`
	TokenRefreshes   uint64 `json:"tokenRefreshes"`
	DroppedPumpItems uint64 `json:"droppedPumpItems"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordFrameSent()     { t.framesSent.Add(1) }
func (t *telemetryCounters) RecordFrameReceived() { t.framesReceived.Add(1) }

func (t *telemetryCounters) RecordReply(matched bool) {
	if matched {
		t.repliesMatched.Add(1)
		return
	}
	t.repliesUnmatched.Add(1)
}

func (t *telemetryCounters) RecordButtonInput()   { t.buttonInputs.Add(1) }
func (t *telemetryCounters) RecordJoystickInput() { t.joystickInputs.Add(1) }
func (t *telemetryCounters) RecordReconnect()     { t.reconnects.Add(1) }
func (t *telemetryCounters) RecordTokenRefresh()  { t.tokenRefreshes.Add(1) }

func (t *telemetryCounters) RecordPump(duration time.Duration) {
	t.pumpTicks.Add(1)
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.pumpDurationMS.Store(millis)
	if t.debug {
		fmt.Printf(
			"[telemetry] pump=%dms ticks=%d framesIn=%d framesOut=%d\n",
			millis,
			t.pumpTicks.Load(),
			t.framesReceived.Load(),
			t.framesSent.Load(),
		)
	}
}

func (t *telemetryCounters) Snapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		FramesSent:       t.framesSent.Load(),
		FramesReceived:   t.framesReceived.Load(),
		RepliesMatched:   t.repliesMatched.Load(),
		RepliesUnmatched: t.repliesUnmatched.Load(),
		ButtonInputs:     t.buttonInputs.Load(),
		JoystickInputs:   t.joystickInputs.Load(),
		PumpTicks:        t.pumpTicks.Load(),
		PumpDurationMS:   t.pumpDurationMS.Load(),
		Reconnects:       t.reconnects.Load(),
		TokenRefreshes:   t.tokenRefreshes.Load(),
	}
}
