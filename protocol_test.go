package client

import (
	"fmt"
	"strings"
	"testing"
)

func TestHelloTriggersModelFetch(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")

	pushServerFrame(c, methodFrame(methodHello, nil))
	c.DoWork()

	methods := transport.sentMethods(t)
	want := []string{methodSetCompression, methodGetGroups, methodGetScenes}
	if len(methods) != len(want) {
		t.Fatalf("expected %d frames after hello, got %v", len(want), methods)
	}
	for i, method := range want {
		if methods[i] != method {
			t.Fatalf("frame %d: expected %s, got %s", i, method, methods[i])
		}
	}
	if len(c.outstanding) != len(want) {
		t.Fatalf("expected %d outstanding messages, got %d", len(want), len(c.outstanding))
	}
}

func TestMethodKeyOnWire(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")

	c.sendMethod(methodGetScenes, nil, false)

	if len(transport.sent) != 1 {
		t.Fatalf("expected one frame, got %d", len(transport.sent))
	}
	frame := transport.sent[0]
	if !strings.Contains(frame, `"method":"getScenes"`) {
		t.Fatalf("frame does not carry the method key: %s", frame)
	}
	if strings.Contains(frame, `"name"`) {
		t.Fatalf("frame must not use the name key: %s", frame)
	}
}

func TestInitializationGateAdvancesState(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	c.shouldStartInteractive = true
	c.setInteractivityState(InteractivityInitializing)
	c.outbox = nil

	pushServerFrame(c, methodFrame(methodHello, nil))
	c.DoWork()

	ids := make(map[string]uint32)
	for id, method := range c.outstanding {
		ids[method] = id
	}

	var states []InteractivityState
	c.OnInteractivityStateChanged = func(ev StateChangedEvent) {
		states = append(states, ev.Current)
	}

	pushServerFrame(c, replyFrame(ids[methodGetGroups], groupsPayload{Groups: []groupEntry{{GroupID: DefaultGroupID, SceneID: DefaultSceneID}}}))
	c.DoWork()
	if c.state != InteractivityInitializing {
		t.Fatalf("state advanced before scenes arrived: %s", c.state)
	}

	pushServerFrame(c, replyFrame(ids[methodGetScenes], scenesPayload{Scenes: []sceneEntry{{SceneID: DefaultSceneID}}}))
	c.DoWork()

	if len(states) != 2 || states[0] != InteractivityInitialized || states[1] != InteractivityPending {
		t.Fatalf("expected Initialized then InteractivityPending, got %v", states)
	}

	methods := transport.sentMethods(t)
	foundReady := false
	for _, method := range methods {
		if method == methodReady {
			foundReady = true
		}
	}
	if !foundReady {
		t.Fatalf("automatic ready frame missing from %v", methods)
	}
}

func TestReplyErrorSurfacesCode(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	id := c.sendMethod(methodCapture, captureParams{TransactionID: "tx-1"}, false)
	if id == 0 {
		t.Fatalf("sendMethod dropped the frame")
	}

	var got ErrorEvent
	c.OnError = func(ev ErrorEvent) { got = ev }

	pushServerFrame(c, fmt.Sprintf(`{"type":"reply","id":%d,"error":{"code":4006,"message":"transaction expired"}}`, id))
	c.DoWork()

	if got.Kind != ErrorKindReplyError {
		t.Fatalf("expected reply error kind, got %s", got.Kind)
	}
	if got.Code != 4006 {
		t.Fatalf("expected code 4006, got %d", got.Code)
	}
	if !strings.Contains(got.Message, "capture") {
		t.Fatalf("message does not name the method: %s", got.Message)
	}
	if _, still := c.outstanding[id]; still {
		t.Fatalf("outstanding entry not cleared after reply")
	}
}

func TestOrphanReplyIsIgnored(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	fired := false
	c.OnError = func(ErrorEvent) { fired = true }

	pushServerFrame(c, replyFrame(999, nil))
	c.DoWork()

	if fired {
		t.Fatalf("orphan reply must not surface an error")
	}
	if c.Telemetry().RepliesUnmatched != 1 {
		t.Fatalf("expected one unmatched reply in telemetry")
	}
}

func TestUnknownPushMethodIsIgnored(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	fired := false
	c.OnError = func(ErrorEvent) { fired = true }

	pushServerFrame(c, methodFrame("onSomethingNew", map[string]any{"x": 1}))
	c.DoWork()

	if fired {
		t.Fatalf("unknown push must not surface an error")
	}
}

func TestMalformedFrameSurfacesProtocolError(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	var got ErrorEvent
	c.OnError = func(ev ErrorEvent) { got = ev }

	pushServerFrame(c, `{not json`)
	c.DoWork()

	if got.Kind != ErrorKindProtocolError {
		t.Fatalf("expected protocol error, got %s", got.Kind)
	}
	if got.Code != defaultErrorCode {
		t.Fatalf("expected default code %d, got %d", defaultErrorCode, got.Code)
	}
}

func TestRawMessageEventFiresForEveryFrame(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	var raws []string
	c.OnInteractiveMessageEvent = func(ev MessageEvent) { raws = append(raws, ev.Raw) }

	frame := methodFrame(methodHello, nil)
	pushServerFrame(c, frame)
	c.DoWork()

	if len(raws) != 1 || raws[0] != frame {
		t.Fatalf("expected the raw frame to be delivered, got %v", raws)
	}
}
