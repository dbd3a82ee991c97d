// Package client connects a game process to a remote interactive broadcast
// service. It keeps a persistent websocket to the service, authenticates the
// local user through a short-code OAuth grant, mirrors the server's scenes,
// groups, controls, and participants, and folds viewer input into per-tick
// button and joystick queries.
//
// The facade is single-threaded at the boundary: network and timer callbacks
// only enqueue, and the host drains them by calling DoWork once per frame.
package client

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"playlink/client/internal/config"
	"playlink/client/internal/rest"
	"playlink/client/internal/timers"
	"playlink/client/internal/tokenstore"
	"playlink/client/internal/ws"
	"playlink/client/logging"
	"playlink/client/logging/lifecycle"
	"playlink/client/logging/sinks"
)

// DefaultAPIBase is the production service endpoint.
const DefaultAPIBase = "https://api.playlink.gg/v1"

// socketTransport is the websocket surface the facade drives. ws.Transport
// satisfies it; tests substitute their own.
type socketTransport interface {
	Open(url string, header http.Header)
	Send(text string) error
	Close(code int, reason string)
	Connected() bool
}

// Options configures a Client. Zero values get sensible defaults; only
// ClientID is commonly required in production.
type Options struct {
	// ClientID is the OAuth client identifier for the short-code grant.
	ClientID string
	// APIBase overrides the service endpoint, mainly for tests.
	APIBase string

	// AppID and ProjectVersionID identify the interactive project. When
	// either is empty, Initialize reads ConfigPath instead.
	AppID            string
	ProjectVersionID string
	ShareCode        string
	ConfigPath       string

	// TokenStore overrides credential persistence. When nil a SQLite store
	// is opened at TokenDBPath and owned by the client.
	TokenStore  tokenstore.Store
	TokenDBPath string

	HTTPClient *http.Client
	Logger     *log.Logger
	// Publisher overrides structured event delivery. When nil the client
	// builds a router over the default sink config and owns its shutdown;
	// pass logging.NopPublisher() to silence events entirely.
	Publisher logging.Publisher
	// LogConfig tunes the owned router. Ignored when Publisher is set.
	LogConfig *logging.Config
}

// Client is the public facade. All exported methods must be called from the
// same goroutine that calls DoWork.
type Client struct {
	// Delegates fire during DoWork, after the input counters have rolled.
	OnError                           func(ErrorEvent)
	OnInteractivityStateChanged       func(StateChangedEvent)
	OnParticipantStateChanged         func(Participant, ParticipantState)
	OnInteractiveButtonEvent          func(ButtonEvent)
	OnInteractiveJoystickControlEvent func(JoystickEvent)
	OnInteractiveMessageEvent         func(MessageEvent)

	clientID   string
	apiBase    string
	configPath string
	project    config.Project

	logger    *log.Logger
	pub       logging.Publisher
	logRouter *logging.Router
	runCtx    context.Context

	pump   *pumpQueue
	outbox []outEvent
	tick   uint64

	transport  socketTransport
	rest       *rest.Client
	timers     *timers.Service
	tokens     tokenstore.Store
	ownsTokens bool

	telemetry *telemetryCounters

	authSt          authState
	shortCode       string
	shortCodeHandle string
	authToken       string
	refreshToken    string
	pendingHTTP     map[string]httpPurpose

	connSt         connectionState
	wsURL          string
	pendingConnect bool
	connected      bool
	pendingVerify  bool

	currentMessageID       uint32
	outstanding            map[uint32]string
	initializedGroups      bool
	initializedScenes      bool
	shouldStartInteractive bool

	state       InteractivityState
	initialized bool
	disposed    bool

	scenes        []*Scene
	groups        map[string]*Group
	participants  map[uint32]*Participant
	sessionToUser map[string]uint32
	controls      map[string]*Control
	buttons       map[string]*Control
	joysticks     map[string]*Control

	buttonByUser   map[inputKey]*buttonState
	buttonGlobal   map[string]*buttonState
	joystickByUser map[inputKey]*joystickState
	joystickGlobal map[string]*joystickState
}

// New constructs a client. The returned client does nothing until
// Initialize is called.
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	pub := opts.Publisher
	var logRouter *logging.Router
	if pub == nil {
		logCfg := logging.DefaultConfig()
		if opts.LogConfig != nil {
			logCfg = *opts.LogConfig
		}
		router, err := sinks.NewDefaultRouter(logCfg, os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("construct logging router: %w", err)
		}
		logRouter = router
		pub = router
	}
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = defaultConfigPath
	}

	tokens := opts.TokenStore
	ownsTokens := false
	if tokens == nil {
		path := opts.TokenDBPath
		if path == "" {
			path = defaultTokenDBPath
		}
		store, err := tokenstore.NewSQLite(path)
		if err != nil {
			if logRouter != nil {
				logRouter.Close(context.Background())
			}
			return nil, fmt.Errorf("open token store: %w", err)
		}
		tokens = store
		ownsTokens = true
	}

	c := &Client{
		clientID:   opts.ClientID,
		apiBase:    apiBase,
		configPath: configPath,
		project: config.Project{
			AppID:            opts.AppID,
			ProjectVersionID: opts.ProjectVersionID,
			ShareCode:        opts.ShareCode,
		},
		logger:         logger,
		pub:            pub,
		logRouter:      logRouter,
		runCtx:         context.Background(),
		pump:           newPumpQueue(pumpQueueLimit),
		timers:         timers.New(),
		tokens:         tokens,
		ownsTokens:     ownsTokens,
		telemetry:      newTelemetryCounters(),
		pendingHTTP:    make(map[string]httpPurpose),
		outstanding:    make(map[uint32]string),
		groups:         make(map[string]*Group),
		participants:   make(map[uint32]*Participant),
		sessionToUser:  make(map[string]uint32),
		controls:       make(map[string]*Control),
		buttons:        make(map[string]*Control),
		joysticks:      make(map[string]*Control),
		buttonByUser:   make(map[inputKey]*buttonState),
		buttonGlobal:   make(map[string]*buttonState),
		joystickByUser: make(map[inputKey]*joystickState),
		joystickGlobal: make(map[string]*joystickState),
	}

	c.transport = ws.New(ws.Handlers{
		OnOpen:    func() { c.pump.push(wsOpenedItem{}) },
		OnMessage: func(text string) { c.pump.push(wsMessageItem{text: text}) },
		OnError:   func(message string) { c.pump.push(wsErrorItem{message: message}) },
		OnClose:   func(code int, reason string) { c.pump.push(wsClosedItem{code: code, reason: reason}) },
	}, logger)
	c.rest = rest.New(opts.HTTPClient, func(resp rest.Response) {
		c.pump.push(httpResponseItem{resp: resp})
	}, logger)

	return c, nil
}

// Initialize loads the project configuration and starts discovery and the
// credential flow. When shouldStartInteractive is set the client sends ready
// automatically once the model mirror is populated.
//
// Missing appid or projectversionid is the only hard failure.
func (c *Client) Initialize(shouldStartInteractive bool) error {
	if c.disposed {
		return fmt.Errorf("client is disposed")
	}
	if c.initialized {
		c.queueError(ErrorKindMisuse, defaultErrorCode, "Initialize called twice")
		return nil
	}

	if !c.project.Complete() {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			c.logger.Printf("config load: %v", err)
		}
		if c.project.AppID == "" {
			c.project.AppID = loaded.AppID
		}
		if c.project.ProjectVersionID == "" {
			c.project.ProjectVersionID = loaded.ProjectVersionID
		}
		if c.project.ShareCode == "" {
			c.project.ShareCode = loaded.ShareCode
		}
	}
	if !c.project.Complete() {
		return ErrMissingConfig
	}

	c.initialized = true
	c.shouldStartInteractive = shouldStartInteractive
	c.setInteractivityState(InteractivityInitializing)
	c.startDiscovery()
	c.beginAuth()
	return nil
}

// DoWork drains the pump queue, rolls the input counters, and dispatches
// queued delegates. Call once per frame from the consumer goroutine.
func (c *Client) DoWork() {
	if c.disposed {
		return
	}
	start := time.Now()
	c.tick++

	for _, item := range c.pump.drain() {
		c.handlePumpItem(item)
	}

	if c.state == InteractivityEnabled {
		c.rollInputCounters()
	}

	outbox := c.outbox
	c.outbox = nil
	for _, ev := range outbox {
		ev.dispatch(c)
	}

	c.telemetry.RecordPump(time.Since(start))
}

func (c *Client) handlePumpItem(item pumpItem) {
	switch it := item.(type) {
	case wsOpenedItem:
		c.onSocketOpened()
	case wsMessageItem:
		c.handleSocketMessage(it.text)
	case wsErrorItem:
		c.onSocketError(it.message)
	case wsClosedItem:
		c.onSocketClosed(it.code, it.reason)
	case httpResponseItem:
		c.handleHTTPResponse(it.resp)
	case timerItem:
		c.handleTimer(it.name)
	}
}

// Dispose stops all timers, closes the socket, and releases owned storage.
// No operation is retried after dispose.
func (c *Client) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.timers.StopAll()
	if c.transport != nil && c.transport.Connected() {
		c.transport.Close(normalCloseCode, "client disposing")
	}
	if c.ownsTokens {
		if err := c.tokens.Close(); err != nil {
			c.logger.Printf("token store close failed: %v", err)
		}
	}
	lifecycle.Disposed(c.runCtx, c.pub, c.tick, "host requested dispose")
	if c.logRouter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := c.logRouter.Close(ctx); err != nil {
			c.logger.Printf("logging router close failed: %v", err)
		}
	}
}

func (c *Client) queueOut(ev outEvent) {
	c.outbox = append(c.outbox, ev)
}

func (c *Client) queueError(kind ErrorKind, code int, message string) {
	c.queueOut(errorOut{ev: ErrorEvent{Kind: kind, Code: code, Message: message}})
}

func (c *Client) setInteractivityState(next InteractivityState) {
	if c.state == next {
		return
	}
	previous := c.state
	c.state = next
	c.queueOut(stateOut{ev: StateChangedEvent{Previous: previous, Current: next}})
	lifecycle.StateChanged(c.runCtx, c.pub, c.tick, lifecycle.StatePayload{
		Previous: previous.String(),
		Current:  next.String(),
	})
}

// State returns the current interactivity lifecycle phase.
func (c *Client) State() InteractivityState {
	return c.state
}

// Telemetry returns a snapshot of the client's counters.
func (c *Client) Telemetry() TelemetrySnapshot {
	snap := c.telemetry.Snapshot()
	snap.DroppedPumpItems = c.pump.droppedCount()
	return snap
}

// Groups returns a copy of the known groups.
func (c *Client) Groups() []Group {
	out := make([]Group, 0, len(c.groups))
	for _, g := range c.groups {
		out = append(out, *g)
	}
	return out
}

// Scenes returns a deep copy of the known scenes.
func (c *Client) Scenes() []Scene {
	out := make([]Scene, 0, len(c.scenes))
	for _, s := range c.scenes {
		out = append(out, cloneScene(s))
	}
	return out
}

// Participants returns a copy of every participant ever seen this session,
// including those that have left.
func (c *Client) Participants() []Participant {
	out := make([]Participant, 0, len(c.participants))
	for _, p := range c.participants {
		out = append(out, *p)
	}
	return out
}

// Buttons returns a copy of every button control.
func (c *Client) Buttons() []Control {
	out := make([]Control, 0, len(c.buttons))
	for _, ctl := range c.buttons {
		out = append(out, *ctl)
	}
	return out
}

// Joysticks returns a copy of every joystick control.
func (c *Client) Joysticks() []Control {
	out := make([]Control, 0, len(c.joysticks))
	for _, ctl := range c.joysticks {
		out = append(out, *ctl)
	}
	return out
}

// ControlByID returns a copy of the control, false when unknown.
func (c *Client) ControlByID(controlID string) (Control, bool) {
	if ctl, ok := c.controls[controlID]; ok {
		return *ctl, true
	}
	return Control{}, false
}

// Group returns the group, synthesizing the default group when the server
// has not announced it yet.
func (c *Client) Group(groupID string) Group {
	return c.groupByID(groupID)
}

// CurrentScene returns the scene bound to the default group.
func (c *Client) CurrentScene() Scene {
	return c.currentScene()
}
