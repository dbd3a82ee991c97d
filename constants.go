package client

import "time"

// ProtocolVersion is advertised in the X-Protocol-Version handshake header.
const ProtocolVersion = "2.0"

// OAuthScope requested for the short-code grant.
const OAuthScope = "interactive:robot:self"

// Named timers driving the auth and connection state machines.
const (
	timerCheckAuthStatus  = "check_auth_status"
	timerRefreshShortCode = "refresh_short_code"
	timerReconnect        = "reconnect"
)

const (
	checkAuthInterval = 500 * time.Millisecond
	reconnectInterval = 500 * time.Millisecond
)

// Reserved websocket close codes from the service.
const (
	CloseProjectNotAccessible = 4019
	CloseVersionNotFound      = 4020
	CloseDuplicateSession     = 4021
)

// Well-known identifiers that always exist in the client view.
const (
	DefaultGroupID = "default"
	DefaultSceneID = "default"
)

const (
	defaultErrorCode    = 83
	pumpQueueLimit      = 1024
	cooldownHintFloorMS = 1000
	defaultConfigPath   = "interactiveconfig.json"
	defaultTokenDBPath  = "interactive-tokens.db"
	normalCloseCode     = 1000
)
