package client

import (
	"time"

	"playlink/client/logging"
)

type inputKey struct {
	userID    uint32
	controlID string
}

// counterTriple buffers event counts across the tick boundary. next fills
// during intake, current answers queries for the running tick, previous is
// last tick's view.
type counterTriple struct {
	previous uint32
	current  uint32
	next     uint32
}

func (t *counterTriple) roll() {
	t.previous = t.current
	t.current = t.next
	t.next = 0
}

type buttonState struct {
	isDown    bool
	isPressed bool
	isUp      bool
	down      counterTriple
	pressed   counterTriple
	up        counterTriple
}

type joystickState struct {
	x float64
	y float64
	n uint32
}

func (j *joystickState) accumulate(x, y float64) {
	j.n++
	n := float64(j.n)
	j.x = j.x*(n-1)/n + x/n
	j.y = j.y*(n-1)/n + y/n
}

func (c *Client) buttonStateFor(key inputKey) *buttonState {
	s, ok := c.buttonByUser[key]
	if !ok {
		s = &buttonState{}
		c.buttonByUser[key] = s
	}
	return s
}

func (c *Client) globalButtonState(controlID string) *buttonState {
	s, ok := c.buttonGlobal[controlID]
	if !ok {
		s = &buttonState{}
		c.buttonGlobal[controlID] = s
	}
	return s
}

// handleGiveInput routes one input to the per-participant and per-control
// aggregates and queues the matching delegate event.
func (c *Client) handleGiveInput(payload giveInputPayload) {
	participant, ok := c.participantBySession(payload.ParticipantID)
	if !ok {
		c.logger.Printf("giveInput for unknown participant session %q dropped", payload.ParticipantID)
		return
	}
	participant.LastInputAt = time.Now()

	input := payload.Input
	switch input.Event {
	case inputEventMouseDown, inputEventMouseUp:
		pressed := input.Event == inputEventMouseDown
		key := inputKey{userID: participant.UserID, controlID: input.ControlID}
		applyButton(c.buttonStateFor(key), pressed)
		applyButton(c.globalButtonState(input.ControlID), pressed)
		c.telemetry.RecordButtonInput()
		c.queueOut(buttonOut{ev: ButtonEvent{
			ParticipantSessionID: participant.SessionID,
			UserID:               participant.UserID,
			ControlID:            input.ControlID,
			TransactionID:        payload.TransactionID,
			Pressed:              pressed,
		}})
	case inputEventMove:
		key := inputKey{userID: participant.UserID, controlID: input.ControlID}
		c.joystickStateFor(key).accumulate(input.X, input.Y)
		c.globalJoystickState(input.ControlID).accumulate(input.X, input.Y)
		c.telemetry.RecordJoystickInput()
		c.queueOut(joystickOut{ev: JoystickEvent{
			ParticipantSessionID: participant.SessionID,
			UserID:               participant.UserID,
			ControlID:            input.ControlID,
			X:                    input.X,
			Y:                    input.Y,
		}})
	default:
		c.logInput("input.unknown_event", logging.SeverityDebug, map[string]any{
			"event":     input.Event,
			"controlID": input.ControlID,
		})
	}
}

// applyButton runs the edge detection for one pointer event. A press is a
// down edge only when no press was already buffered for the filling tick.
func applyButton(s *buttonState, pressed bool) {
	wasPreviouslyPressed := s.pressed.next > 0
	switch {
	case pressed && !wasPreviouslyPressed:
		s.isDown = true
		s.isPressed = true
		s.isUp = false
		s.down.next++
		s.pressed.next++
	case pressed:
		s.isDown = false
		s.isPressed = true
		s.isUp = false
		s.pressed.next++
	default:
		s.isDown = false
		s.isPressed = false
		s.isUp = true
		s.up.next++
	}
}

func (c *Client) logInput(event string, sev logging.Severity, payload any) {
	if c.pub == nil {
		return
	}
	c.pub.Publish(c.runCtx, logging.Event{
		Type:     logging.EventType(event),
		Tick:     c.tick,
		Severity: sev,
		Category: logging.CategoryInput,
		Payload:  payload,
	})
}

func (c *Client) joystickStateFor(key inputKey) *joystickState {
	s, ok := c.joystickByUser[key]
	if !ok {
		s = &joystickState{}
		c.joystickByUser[key] = s
	}
	return s
}

func (c *Client) globalJoystickState(controlID string) *joystickState {
	s, ok := c.joystickGlobal[controlID]
	if !ok {
		s = &joystickState{}
		c.joystickGlobal[controlID] = s
	}
	return s
}

// rollInputCounters shifts every triple buffer at the tick boundary. Runs
// only while interactivity is enabled.
func (c *Client) rollInputCounters() {
	for _, s := range c.buttonByUser {
		s.down.roll()
		s.pressed.roll()
		s.up.roll()
	}
	for _, s := range c.buttonGlobal {
		s.down.roll()
		s.pressed.roll()
		s.up.roll()
	}
}

// GetButtonDown reports whether the participant pressed the button this tick.
func (c *Client) GetButtonDown(controlID string, userID uint32) bool {
	return c.GetCountOfButtonDowns(controlID, userID) > 0
}

// GetButtonPressed reports whether the participant is holding the button this
// tick.
func (c *Client) GetButtonPressed(controlID string, userID uint32) bool {
	return c.GetCountOfButtonPresses(controlID, userID) > 0
}

// GetButtonUp reports whether the participant released the button this tick.
func (c *Client) GetButtonUp(controlID string, userID uint32) bool {
	return c.GetCountOfButtonUps(controlID, userID) > 0
}

func (c *Client) GetCountOfButtonDowns(controlID string, userID uint32) uint32 {
	if s, ok := c.buttonByUser[inputKey{userID: userID, controlID: controlID}]; ok {
		return s.down.current
	}
	return 0
}

func (c *Client) GetCountOfButtonPresses(controlID string, userID uint32) uint32 {
	if s, ok := c.buttonByUser[inputKey{userID: userID, controlID: controlID}]; ok {
		return s.pressed.current
	}
	return 0
}

func (c *Client) GetCountOfButtonUps(controlID string, userID uint32) uint32 {
	if s, ok := c.buttonByUser[inputKey{userID: userID, controlID: controlID}]; ok {
		return s.up.current
	}
	return 0
}

// AnyButtonDown reports whether any participant pressed the button this tick.
func (c *Client) AnyButtonDown(controlID string) bool {
	return c.CountOfButtonDowns(controlID) > 0
}

// AnyButtonPressed reports whether any participant is holding the button this
// tick.
func (c *Client) AnyButtonPressed(controlID string) bool {
	return c.CountOfButtonPresses(controlID) > 0
}

// AnyButtonUp reports whether any participant released the button this tick.
func (c *Client) AnyButtonUp(controlID string) bool {
	return c.CountOfButtonUps(controlID) > 0
}

func (c *Client) CountOfButtonDowns(controlID string) uint32 {
	if s, ok := c.buttonGlobal[controlID]; ok {
		return s.down.current
	}
	return 0
}

func (c *Client) CountOfButtonPresses(controlID string) uint32 {
	if s, ok := c.buttonGlobal[controlID]; ok {
		return s.pressed.current
	}
	return 0
}

func (c *Client) CountOfButtonUps(controlID string) uint32 {
	if s, ok := c.buttonGlobal[controlID]; ok {
		return s.up.current
	}
	return 0
}

// GetJoystickX returns the smoothed horizontal coordinate for one
// participant, zero when the participant has not moved the stick.
func (c *Client) GetJoystickX(controlID string, userID uint32) float64 {
	if s, ok := c.joystickByUser[inputKey{userID: userID, controlID: controlID}]; ok {
		return s.x
	}
	return 0
}

// GetJoystickY returns the smoothed vertical coordinate for one participant.
func (c *Client) GetJoystickY(controlID string, userID uint32) float64 {
	if s, ok := c.joystickByUser[inputKey{userID: userID, controlID: controlID}]; ok {
		return s.y
	}
	return 0
}

// JoystickX returns the smoothed horizontal coordinate across all
// participants.
func (c *Client) JoystickX(controlID string) float64 {
	if s, ok := c.joystickGlobal[controlID]; ok {
		return s.x
	}
	return 0
}

// JoystickY returns the smoothed vertical coordinate across all participants.
func (c *Client) JoystickY(controlID string) float64 {
	if s, ok := c.joystickGlobal[controlID]; ok {
		return s.y
	}
	return 0
}
