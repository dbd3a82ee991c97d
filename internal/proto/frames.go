// Package proto encodes and decodes the wire envelope shared by both
// directions of the interactive service websocket.
package proto

import (
	"encoding/json"
	"fmt"
)

// Envelope type identifiers.
const (
	TypeMethod = "method"
	TypeReply  = "reply"
)

// ReplyError is the error object a reply may carry in place of a result.
type ReplyError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

func (e *ReplyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("reply error %d at %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("reply error %d: %s", e.Code, e.Message)
}

// Frame is a decoded envelope. Exactly one of Method (with Params) or the
// reply pair (Result, Err) is meaningful depending on Type.
type Frame struct {
	Type   string
	ID     uint32
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Err    *ReplyError
}

// MethodFrame is the client-side envelope. The method name is carried under
// the key "method" — the same spelling as the type tag's value — which is a
// quirk of the service's wire format and must not be "name".
type MethodFrame struct {
	Type   string          `json:"type"`
	ID     uint32          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Disc   bool            `json:"discard,omitempty"`
}

type wireFrame struct {
	Type   string          `json:"type"`
	ID     uint32          `json:"id"`
	Method string          `json:"method"`
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Err    *ReplyError     `json:"error"`
}

// Decode parses an incoming frame. Unknown keys and absent members are
// tolerated; the method name is accepted under either "method" or "name".
func Decode(data []byte) (Frame, error) {
	var wire wireFrame
	if err := json.Unmarshal(data, &wire); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	frame := Frame{
		Type:   wire.Type,
		ID:     wire.ID,
		Method: wire.Method,
		Params: wire.Params,
		Result: wire.Result,
		Err:    wire.Err,
	}
	if frame.Method == "" {
		frame.Method = wire.Name
	}
	if frame.Type == "" {
		return Frame{}, fmt.Errorf("decode frame: missing type")
	}
	return frame, nil
}

// EncodeMethod renders a client method frame. params may be any marshalable
// value; nil produces an empty object so the server never sees a null.
func EncodeMethod(id uint32, method string, params any, discard bool) ([]byte, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}
	frame := MethodFrame{
		Type:   TypeMethod,
		ID:     id,
		Method: method,
		Params: raw,
		Disc:   discard,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", method, err)
	}
	return data, nil
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return json.RawMessage(`{}`), nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		if len(raw) == 0 {
			return json.RawMessage(`{}`), nil
		}
		return raw, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return data, nil
}
