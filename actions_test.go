package client

import (
	"encoding/json"
	"testing"
	"time"
)

func seedButton(c *Client, sceneID, controlID string) {
	c.applyControlUpdate(controlUpdatePayload{
		SceneID:  sceneID,
		Controls: []controlEntry{{ControlID: controlID, Kind: "button", Etag: "e1"}},
	})
}

func decodeSentFrame(t *testing.T, raw string) (string, map[string]any) {
	t.Helper()
	var frame struct {
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
	}
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("frame did not decode: %v", err)
	}
	return frame.Method, frame.Params
}

func TestTriggerCooldownSendsSingleUpdate(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	seedButton(c, "stage", "fire")

	before := time.Now().UnixMilli()
	if err := c.TriggerCooldown("fire", 5000); err != nil {
		t.Fatalf("TriggerCooldown failed: %v", err)
	}
	after := time.Now().UnixMilli()

	if len(transport.sent) != 1 {
		t.Fatalf("expected exactly one frame, got %d", len(transport.sent))
	}
	method, params := decodeSentFrame(t, transport.sent[0])
	if method != methodUpdateControls {
		t.Fatalf("expected updateControls, got %s", method)
	}
	controls := params["controls"].([]any)
	patch := controls[0].(map[string]any)
	cooldown := int64(patch["cooldown"].(float64))
	if cooldown < before+5000 || cooldown > after+5000 {
		t.Fatalf("cooldown %d outside expected window [%d, %d]", cooldown, before+5000, after+5000)
	}

	ctl, _ := c.ControlByID("fire")
	if ctl.CooldownExpirationMS != cooldown {
		t.Fatalf("local cooldown %d disagrees with the frame %d", ctl.CooldownExpirationMS, cooldown)
	}
}

func TestTriggerCooldownUnknownControl(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")
	if err := c.TriggerCooldown("missing", 5000); err == nil {
		t.Fatalf("expected an error for an unknown control")
	}
}

func TestStartInteractiveBeforeInitializationIsMisuse(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	var got ErrorEvent
	c.OnError = func(ev ErrorEvent) { got = ev }

	if err := c.StartInteractive(); err == nil {
		t.Fatalf("expected StartInteractive to fail before initialization")
	}
	c.DoWork()

	if got.Kind != ErrorKindMisuse {
		t.Fatalf("expected misuse error, got %s", got.Kind)
	}
}

func TestStartInteractiveSendsReady(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	c.state = InteractivityInitialized

	if err := c.StartInteractive(); err != nil {
		t.Fatalf("StartInteractive failed: %v", err)
	}

	method, params := decodeSentFrame(t, transport.sent[0])
	if method != methodReady {
		t.Fatalf("expected ready frame, got %s", method)
	}
	if params["isReady"] != true {
		t.Fatalf("expected isReady true, got %v", params["isReady"])
	}
	if c.state != InteractivityPending {
		t.Fatalf("expected InteractivityPending, got %s", c.state)
	}
}

func TestSetProgressClampsAndTargetsButtons(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	seedButton(c, "stage", "fire")

	if err := c.SetProgress("fire", 1.5); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	method, params := decodeSentFrame(t, transport.sent[0])
	if method != methodSetButtonControlProperties {
		t.Fatalf("expected setButtonControlProperties, got %s", method)
	}
	patch := params["controls"].([]any)[0].(map[string]any)
	if patch["progress"].(float64) != 1 {
		t.Fatalf("progress not clamped: %v", patch["progress"])
	}

	c.applyControlUpdate(controlUpdatePayload{
		SceneID:  "stage",
		Controls: []controlEntry{{ControlID: "stick", Kind: "joystick"}},
	})
	if err := c.SetProgress("stick", 0.5); err == nil {
		t.Fatalf("progress on a joystick must fail")
	}
}

func TestSetCurrentSceneUpdatesDefaultGroup(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")

	if err := c.SetCurrentScene("arena"); err != nil {
		t.Fatalf("SetCurrentScene failed: %v", err)
	}

	method, params := decodeSentFrame(t, transport.sent[0])
	if method != methodSetCurrentScene {
		t.Fatalf("expected setCurrentScene, got %s", method)
	}
	if params["groupID"] != DefaultGroupID || params["sceneID"] != "arena" {
		t.Fatalf("unexpected params: %v", params)
	}
	if c.Group(DefaultGroupID).SceneID != "arena" {
		t.Fatalf("local binding not updated")
	}
}

func TestSendRawMessageBypassesCorrelation(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")

	raw := `{"type":"method","id":1,"method":"custom","params":{}}`
	if err := c.SendRawMessage(raw); err != nil {
		t.Fatalf("SendRawMessage failed: %v", err)
	}
	if len(transport.sent) != 1 || transport.sent[0] != raw {
		t.Fatalf("raw frame not sent verbatim: %v", transport.sent)
	}
	if len(c.outstanding) != 0 {
		t.Fatalf("raw sends must not register outstanding messages")
	}

	transport.online = false
	if err := c.SendRawMessage(raw); err == nil {
		t.Fatalf("expected an error when the transport is closed")
	}
}

func TestSendMethodDroppedWhenTransportClosed(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	transport.online = false

	if id := c.sendMethod(methodGetScenes, nil, false); id != 0 {
		t.Fatalf("expected drop, got id %d", id)
	}
	if len(c.outstanding) != 0 {
		t.Fatalf("dropped frame left an outstanding entry")
	}
}

func TestDisposeClosesTransportAndStopsTimers(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	c.armReconnect()

	c.Dispose()

	if !transport.closed {
		t.Fatalf("transport not closed on dispose")
	}
	if c.timers.Running(timerReconnect) {
		t.Fatalf("timers survived dispose")
	}

	// Dispose is terminal: later pump work is ignored.
	pushServerFrame(c, methodFrame(methodHello, nil))
	c.DoWork()
	if len(transport.sent) != 0 {
		t.Fatalf("disposed client still sent frames")
	}
}
