package client

// Method names pushed by the service.
const (
	methodHello               = "hello"
	methodOnParticipantJoin   = "onParticipantJoin"
	methodOnParticipantLeave  = "onParticipantLeave"
	methodOnParticipantUpdate = "onParticipantUpdate"
	methodOnGroupCreate       = "onGroupCreate"
	methodOnGroupUpdate       = "onGroupUpdate"
	methodOnSceneCreate       = "onSceneCreate"
	methodOnControlUpdate     = "onControlUpdate"
	methodOnReady             = "onReady"
	methodGiveInput           = "giveInput"
)

// Method names sent by the client.
const (
	methodGetGroups                  = "getGroups"
	methodGetScenes                  = "getScenes"
	methodGetAllParticipants         = "getAllParticipants"
	methodReady                      = "ready"
	methodCapture                    = "capture"
	methodSetCurrentScene            = "setCurrentScene"
	methodUpdateControls             = "updateControls"
	methodUpdateGroups               = "updateGroups"
	methodUpdateScenes               = "updateScenes"
	methodUpdateParticipants         = "updateParticipants"
	methodCreateGroups               = "createGroups"
	methodSetCompression             = "setCompression"
	methodSetJoystickCoordinates     = "setJoystickCoordinates"
	methodSetButtonControlProperties = "setButtonControlProperties"
)

// participantEntry is the wire shape of a participant in pushes and replies.
// Timestamps are unix milliseconds.
type participantEntry struct {
	SessionID   string `json:"sessionID"`
	UserID      uint32 `json:"userID"`
	Username    string `json:"username"`
	Level       uint32 `json:"level"`
	GroupID     string `json:"groupID"`
	ConnectedAt int64  `json:"connectedAt"`
	LastInputAt int64  `json:"lastInputAt"`
	Disabled    bool   `json:"disabled"`
	Etag        string `json:"etag"`
}

type groupEntry struct {
	GroupID string `json:"groupID"`
	SceneID string `json:"sceneID"`
	Etag    string `json:"etag,omitempty"`
}

type controlEntry struct {
	ControlID string  `json:"controlID"`
	Kind      string  `json:"kind"`
	Disabled  bool    `json:"disabled"`
	Text      string  `json:"text,omitempty"`
	Etag      string  `json:"etag,omitempty"`
	Cost      uint32  `json:"cost,omitempty"`
	Cooldown  int64   `json:"cooldown,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
}

type sceneEntry struct {
	SceneID  string         `json:"sceneID"`
	Etag     string         `json:"etag,omitempty"`
	Controls []controlEntry `json:"controls"`
}

// participantsPayload covers the three participant pushes and the
// getAllParticipants reply.
type participantsPayload struct {
	Participants []participantEntry `json:"participants"`
}

type groupsPayload struct {
	Groups []groupEntry `json:"groups"`
}

type scenesPayload struct {
	Scenes []sceneEntry `json:"scenes"`
}

type controlUpdatePayload struct {
	SceneID  string         `json:"sceneID"`
	Controls []controlEntry `json:"controls"`
}

type readyPayload struct {
	IsReady bool `json:"isReady"`
}

// giveInputPayload carries one input from one participant. The participant is
// identified by session id; routing to user id goes through the mirror.
type giveInputPayload struct {
	ParticipantID string         `json:"participantID"`
	TransactionID string         `json:"transactionID,omitempty"`
	Input         giveInputEntry `json:"input"`
}

type giveInputEntry struct {
	ControlID string  `json:"controlID"`
	Event     string  `json:"event"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Input event names inside giveInput.
const (
	inputEventMouseDown = "mousedown"
	inputEventMouseUp   = "mouseup"
	inputEventMove      = "move"
)

// Outgoing parameter shapes.

type captureParams struct {
	TransactionID string `json:"transactionID"`
}

type setCurrentSceneParams struct {
	GroupID string `json:"groupID"`
	SceneID string `json:"sceneID"`
}

// controlPatch is a partial control update. Only non-nil fields are written
// so the service leaves the rest untouched.
type controlPatch struct {
	ControlID string   `json:"controlID"`
	Etag      string   `json:"etag,omitempty"`
	Cooldown  *int64   `json:"cooldown,omitempty"`
	Disabled  *bool    `json:"disabled,omitempty"`
	Text      *string  `json:"text,omitempty"`
	Cost      *uint32  `json:"cost,omitempty"`
	Progress  *float64 `json:"progress,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
}

type updateControlsParams struct {
	SceneID  string         `json:"sceneID"`
	Controls []controlPatch `json:"controls"`
}

type updateGroupsParams struct {
	Groups []groupEntry `json:"groups"`
}

type createGroupsParams struct {
	Groups []groupEntry `json:"groups"`
}

type setCompressionParams struct {
	Scheme []string `json:"scheme"`
}
