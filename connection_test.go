package client

import (
	"strings"
	"testing"
)

func TestFatalCloseCodeDoesNotReconnect(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")
	c.connected = true

	var got ErrorEvent
	c.OnError = func(ev ErrorEvent) { got = ev }

	c.pump.push(wsClosedItem{code: CloseVersionNotFound, reason: "version not found"})
	c.DoWork()

	if got.Code != CloseVersionNotFound {
		t.Fatalf("expected close code %d in the error, got %d", CloseVersionNotFound, got.Code)
	}
	if !strings.Contains(got.Message, "4020") || !strings.Contains(got.Message, "access") {
		t.Fatalf("error message must mention the code and access: %q", got.Message)
	}
	if c.timers.Running(timerReconnect) {
		t.Fatalf("reconnect timer must not arm on a fatal close")
	}
}

func TestDuplicateSessionClose(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")
	c.connected = true

	var got ErrorEvent
	c.OnError = func(ev ErrorEvent) { got = ev }

	c.pump.push(wsClosedItem{code: CloseDuplicateSession, reason: "duplicate"})
	c.DoWork()

	if got.Kind != ErrorKindDuplicateSession {
		t.Fatalf("expected duplicate session kind, got %s", got.Kind)
	}
	if c.timers.Running(timerReconnect) {
		t.Fatalf("reconnect timer must not arm on a duplicate session close")
	}
}

func TestAbnormalCloseArmsReconnect(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")
	c.connected = true
	c.state = InteractivityEnabled

	var changes []StateChangedEvent
	c.OnInteractivityStateChanged = func(ev StateChangedEvent) { changes = append(changes, ev) }

	c.pump.push(wsClosedItem{code: 1006, reason: "abnormal closure"})
	c.DoWork()

	if !c.timers.Running(timerReconnect) {
		t.Fatalf("reconnect timer should arm on an abnormal close")
	}
	if c.connSt != connBackoff {
		t.Fatalf("expected backoff state, got %d", c.connSt)
	}
	if c.State() != InteractivityDisabled {
		t.Fatalf("abnormal close must disable interactivity, got %s", c.State())
	}
	if len(changes) != 1 || changes[0].Current != InteractivityDisabled {
		t.Fatalf("state change delegate not fired for the drop: %+v", changes)
	}
	if c.Telemetry().Reconnects != 1 {
		t.Fatalf("reconnect not counted in telemetry")
	}
}

func TestConnectSocketSendsHandshakeHeaders(t *testing.T) {
	c, transport := newTestClient(t, "http://unused")
	c.authToken = "Bearer abc"
	c.project.ShareCode = "share-1"
	c.wsURL = "wss://interactive.example/gameplay"
	c.connected = false
	transport.online = false

	c.connectSocket()

	if len(transport.opened) != 1 || transport.opened[0] != c.wsURL {
		t.Fatalf("transport not opened against the discovered url: %v", transport.opened)
	}
	header := transport.lastHeader
	if header.Get("Authorization") != "Bearer abc" {
		t.Fatalf("authorization header missing")
	}
	if header.Get("X-Interactive-Version") != "version" {
		t.Fatalf("version header missing")
	}
	if header.Get("X-Protocol-Version") != ProtocolVersion {
		t.Fatalf("protocol version header missing")
	}
	if header.Get("X-Interactive-Sharecode") != "share-1" {
		t.Fatalf("share code header missing")
	}

	// Reentrancy guard: a second call while the dial is pending is a no-op.
	c.connectSocket()
	if len(transport.opened) != 1 {
		t.Fatalf("pendingConnect guard failed, opened %d times", len(transport.opened))
	}
}

func TestSocketOpenStopsReconnectTimer(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")
	c.armReconnect()
	if !c.timers.Running(timerReconnect) {
		t.Fatalf("reconnect timer should be armed")
	}

	c.pump.push(wsOpenedItem{})
	c.DoWork()

	if c.timers.Running(timerReconnect) {
		t.Fatalf("reconnect timer should stop once the socket opens")
	}
	if !c.connected || c.connSt != connOpen {
		t.Fatalf("open state not recorded")
	}
}
