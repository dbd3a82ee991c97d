package client

import "time"

// Scene is one screen of controls. The mirror owns the pointer graph; public
// getters hand out copies.
type Scene struct {
	SceneID  string
	Etag     string
	Controls []*Control
}

// Group binds a set of participants to a scene.
type Group struct {
	GroupID string
	SceneID string
	Etag    string
}

// Control is the unified control record. Kind selects which of the optional
// fields are meaningful: Cost and CooldownExpirationMS apply to buttons only.
type Control struct {
	ControlID            string
	SceneID              string
	Kind                 ControlKind
	Disabled             bool
	HelpText             string
	Etag                 string
	Cost                 uint32
	CooldownExpirationMS int64
	Progress             float64
}

// Participant is a viewer known to the session. Entries persist after the
// viewer leaves with State set to ParticipantLeft.
type Participant struct {
	SessionID     string
	UserID        uint32
	Username      string
	Level         uint32
	GroupID       string
	ConnectedAt   time.Time
	LastInputAt   time.Time
	InputDisabled bool
	State         ParticipantState
	Etag          string
}

func cloneScene(s *Scene) Scene {
	out := Scene{SceneID: s.SceneID, Etag: s.Etag}
	if len(s.Controls) > 0 {
		out.Controls = make([]*Control, len(s.Controls))
		for i, ctl := range s.Controls {
			copied := *ctl
			out.Controls[i] = &copied
		}
	}
	return out
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
