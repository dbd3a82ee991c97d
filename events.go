package client

import (
	"sync"

	"playlink/client/internal/rest"
)

// pumpItem is one unit of work marshalled from an I/O or timer goroutine to
// the consumer thread. Items are produced anywhere but consumed only inside
// DoWork.
type pumpItem interface {
	isPumpItem()
}

type wsOpenedItem struct{}

type wsMessageItem struct {
	text string
}

type wsErrorItem struct {
	message string
}

type wsClosedItem struct {
	code   int
	reason string
}

type httpResponseItem struct {
	resp rest.Response
}

type timerItem struct {
	name string
}

func (wsOpenedItem) isPumpItem()     {}
func (wsMessageItem) isPumpItem()    {}
func (wsErrorItem) isPumpItem()      {}
func (wsClosedItem) isPumpItem()     {}
func (httpResponseItem) isPumpItem() {}
func (timerItem) isPumpItem()        {}

// pumpQueue is the bounded intake between background goroutines and the
// consumer thread. Push never blocks; overflow increments a drop counter
// instead of stalling a reader goroutine.
type pumpQueue struct {
	mu      sync.Mutex
	items   []pumpItem
	limit   int
	dropped uint64
}

func newPumpQueue(limit int) *pumpQueue {
	if limit <= 0 {
		limit = pumpQueueLimit
	}
	return &pumpQueue{limit: limit}
}

func (q *pumpQueue) push(item pumpItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.limit {
		q.dropped++
		return false
	}
	q.items = append(q.items, item)
	return true
}

// drain takes ownership of every queued item in FIFO order.
func (q *pumpQueue) drain() []pumpItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	items := q.items
	q.items = nil
	return items
}

func (q *pumpQueue) droppedCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// ErrorEvent is delivered through OnError. Code defaults to 83 when the
// failure has no service-assigned code.
type ErrorEvent struct {
	Kind    ErrorKind
	Code    int
	Message string
}

// StateChangedEvent reports an interactivity state transition.
type StateChangedEvent struct {
	Previous InteractivityState
	Current  InteractivityState
}

// ButtonEvent reports a single button input from a participant.
type ButtonEvent struct {
	ParticipantSessionID string
	UserID               uint32
	ControlID            string
	TransactionID        string
	Pressed              bool
}

// JoystickEvent reports a single joystick move from a participant.
type JoystickEvent struct {
	ParticipantSessionID string
	UserID               uint32
	ControlID            string
	X                    float64
	Y                    float64
}

// MessageEvent carries the raw text of every websocket message, delivered
// after the typed handlers have processed it.
type MessageEvent struct {
	Raw string
}

// outEvent is a delegate dispatch deferred to the end of the current DoWork
// pass, after the input counters have rolled.
type outEvent interface {
	dispatch(c *Client)
}

type errorOut struct {
	ev ErrorEvent
}

func (o errorOut) dispatch(c *Client) {
	if c.OnError != nil {
		c.OnError(o.ev)
	}
}

type stateOut struct {
	ev StateChangedEvent
}

func (o stateOut) dispatch(c *Client) {
	if c.OnInteractivityStateChanged != nil {
		c.OnInteractivityStateChanged(o.ev)
	}
}

type participantOut struct {
	participant Participant
	state       ParticipantState
}

func (o participantOut) dispatch(c *Client) {
	if c.OnParticipantStateChanged != nil {
		c.OnParticipantStateChanged(o.participant, o.state)
	}
}

type buttonOut struct {
	ev ButtonEvent
}

func (o buttonOut) dispatch(c *Client) {
	if c.OnInteractiveButtonEvent != nil {
		c.OnInteractiveButtonEvent(o.ev)
	}
}

type joystickOut struct {
	ev JoystickEvent
}

func (o joystickOut) dispatch(c *Client) {
	if c.OnInteractiveJoystickControlEvent != nil {
		c.OnInteractiveJoystickControlEvent(o.ev)
	}
}

type messageOut struct {
	ev MessageEvent
}

func (o messageOut) dispatch(c *Client) {
	if c.OnInteractiveMessageEvent != nil {
		c.OnInteractiveMessageEvent(o.ev)
	}
}
