package client

import (
	"encoding/json"
	"fmt"

	"playlink/client/internal/proto"
	"playlink/client/logging"
)

// handleSocketMessage is the consumer-thread entry point for one websocket
// text frame. Typed handlers run first; the raw message event fires last so
// hosts observing both see the mirror already reconciled.
func (c *Client) handleSocketMessage(text string) {
	c.telemetry.RecordFrameReceived()
	frame, err := proto.Decode([]byte(text))
	if err != nil {
		c.queueError(ErrorKindProtocolError, defaultErrorCode, err.Error())
		c.logProtocol("protocol.decode_failed", logging.SeverityWarn, map[string]any{"error": err.Error()})
		c.queueOut(messageOut{ev: MessageEvent{Raw: text}})
		return
	}

	switch frame.Type {
	case proto.TypeMethod:
		c.handleServerPush(frame)
	case proto.TypeReply:
		c.handleReply(frame)
	default:
		c.logProtocol("protocol.unknown_type", logging.SeverityDebug, map[string]any{"frameType": frame.Type})
	}

	c.queueOut(messageOut{ev: MessageEvent{Raw: text}})
}

func (c *Client) handleServerPush(frame proto.Frame) {
	switch frame.Method {
	case methodHello:
		c.onHello()
	case methodOnParticipantJoin:
		var payload participantsPayload
		if c.decodeParams(frame, &payload) {
			c.applyParticipantJoin(payload)
		}
	case methodOnParticipantLeave:
		var payload participantsPayload
		if c.decodeParams(frame, &payload) {
			c.applyParticipantLeave(payload)
		}
	case methodOnParticipantUpdate:
		var payload participantsPayload
		if c.decodeParams(frame, &payload) {
			c.applyParticipantUpdate(payload)
		}
	case methodOnGroupCreate, methodOnGroupUpdate:
		var payload groupsPayload
		if c.decodeParams(frame, &payload) {
			c.applyGroups(payload)
		}
	case methodOnSceneCreate:
		var payload scenesPayload
		if c.decodeParams(frame, &payload) {
			c.applySceneCreate(payload)
		}
	case methodOnControlUpdate:
		var payload controlUpdatePayload
		if c.decodeParams(frame, &payload) {
			c.applyControlUpdate(payload)
		}
	case methodOnReady:
		var payload readyPayload
		if c.decodeParams(frame, &payload) {
			if payload.IsReady {
				c.setInteractivityState(InteractivityEnabled)
			} else {
				c.setInteractivityState(InteractivityDisabled)
			}
		}
	case methodGiveInput:
		var payload giveInputPayload
		if c.decodeParams(frame, &payload) {
			c.handleGiveInput(payload)
		}
	default:
		c.logProtocol("protocol.unknown_method", logging.SeverityDebug, map[string]any{"method": frame.Method})
	}
}

// onHello kicks off model discovery. Compression is advertised first so the
// service never switches schemes mid-fetch.
func (c *Client) onHello() {
	c.sendMethod(methodSetCompression, setCompressionParams{Scheme: []string{"none"}}, false)
	c.sendMethod(methodGetGroups, nil, false)
	c.sendMethod(methodGetScenes, nil, false)
}

func (c *Client) decodeParams(frame proto.Frame, into any) bool {
	if len(frame.Params) == 0 {
		return true
	}
	if err := json.Unmarshal(frame.Params, into); err != nil {
		c.queueError(ErrorKindProtocolError, defaultErrorCode, fmt.Sprintf("malformed %s params: %v", frame.Method, err))
		c.logProtocol("protocol.params_failed", logging.SeverityWarn, map[string]any{
			"method": frame.Method,
			"error":  err.Error(),
		})
		return false
	}
	return true
}

func (c *Client) handleReply(frame proto.Frame) {
	method, ok := c.outstanding[frame.ID]
	if !ok {
		c.telemetry.RecordReply(false)
		c.logProtocol("protocol.orphan_reply", logging.SeverityDebug, map[string]any{"id": frame.ID})
		return
	}
	delete(c.outstanding, frame.ID)
	c.telemetry.RecordReply(true)

	if frame.Err != nil {
		c.queueError(ErrorKindReplyError, frame.Err.Code, fmt.Sprintf("%s: %s", method, frame.Err.Error()))
		return
	}

	switch method {
	case methodGetGroups:
		var payload groupsPayload
		if len(frame.Result) > 0 {
			if err := json.Unmarshal(frame.Result, &payload); err != nil {
				c.queueError(ErrorKindProtocolError, defaultErrorCode, fmt.Sprintf("malformed getGroups reply: %v", err))
				return
			}
		}
		c.applyGroups(payload)
		c.initializedGroups = true
		c.checkInitialized()
	case methodGetScenes:
		var payload scenesPayload
		if len(frame.Result) > 0 {
			if err := json.Unmarshal(frame.Result, &payload); err != nil {
				c.queueError(ErrorKindProtocolError, defaultErrorCode, fmt.Sprintf("malformed getScenes reply: %v", err))
				return
			}
		}
		c.applyScenesReplace(payload)
		c.initializedScenes = true
		c.checkInitialized()
	case methodGetAllParticipants:
		var payload participantsPayload
		if len(frame.Result) > 0 {
			if err := json.Unmarshal(frame.Result, &payload); err != nil {
				c.queueError(ErrorKindProtocolError, defaultErrorCode, fmt.Sprintf("malformed getAllParticipants reply: %v", err))
				return
			}
		}
		for _, entry := range payload.Participants {
			p := c.upsertParticipant(entry)
			if p.State != ParticipantLeft {
				p.State = ParticipantJoined
				if p.InputDisabled {
					p.State = ParticipantInputDisabled
				}
			}
		}
	}
}

// checkInitialized advances to Initialized once both bulk fetches landed,
// and fires the automatic ready when the host asked for it at Initialize.
func (c *Client) checkInitialized() {
	if !c.initializedGroups || !c.initializedScenes {
		return
	}
	if c.state == InteractivityInitialized || c.state == InteractivityPending || c.state == InteractivityEnabled {
		return
	}
	c.setInteractivityState(InteractivityInitialized)
	c.sendMethod(methodGetAllParticipants, nil, false)
	if c.shouldStartInteractive {
		c.sendMethod(methodReady, readyPayload{IsReady: true}, false)
		c.setInteractivityState(InteractivityPending)
	}
}

// sendMethod assigns the next message id, records it against the method name
// before the frame can leave the process, and writes the frame. Returns the
// id, zero when the frame was dropped.
func (c *Client) sendMethod(method string, params any, discard bool) uint32 {
	c.currentMessageID++
	id := c.currentMessageID
	c.outstanding[id] = method

	data, err := proto.EncodeMethod(id, method, params, discard)
	if err != nil {
		delete(c.outstanding, id)
		c.logger.Printf("encode %s failed: %v", method, err)
		return 0
	}
	if c.transport == nil || !c.transport.Connected() {
		delete(c.outstanding, id)
		c.logger.Printf("dropping %s frame, transport not open", method)
		return 0
	}
	if err := c.transport.Send(string(data)); err != nil {
		delete(c.outstanding, id)
		c.logger.Printf("send %s failed: %v", method, err)
		return 0
	}
	c.telemetry.RecordFrameSent()
	c.logProtocolMethod(method, id)
	return id
}

func (c *Client) logProtocol(event string, sev logging.Severity, payload any) {
	if c.pub == nil {
		return
	}
	c.pub.Publish(c.runCtx, logging.Event{
		Type:     logging.EventType(event),
		Tick:     c.tick,
		Severity: sev,
		Category: logging.CategoryProtocol,
		Payload:  payload,
	})
}

func (c *Client) logProtocolMethod(method string, id uint32) {
	if c.pub == nil {
		return
	}
	c.pub.Publish(c.runCtx, logging.Event{
		Type:     "protocol.method_sent",
		Tick:     c.tick,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryProtocol,
		Method:   method,
		Payload:  map[string]any{"id": id},
	})
}
