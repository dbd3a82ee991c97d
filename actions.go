package client

import (
	"fmt"
	"time"
)

// StartInteractive asks the service to begin delivering input. Calling it
// before the model mirror is populated is a misuse error.
func (c *Client) StartInteractive() error {
	if !c.readyForInteractive() {
		err := fmt.Errorf("StartInteractive called before initialization completed (state %s)", c.state)
		c.queueError(ErrorKindMisuse, defaultErrorCode, err.Error())
		return err
	}
	c.sendMethod(methodReady, readyPayload{IsReady: true}, false)
	c.setInteractivityState(InteractivityPending)
	return nil
}

// StopInteractive asks the service to stop delivering input. The state
// settles once the service acknowledges with onReady.
func (c *Client) StopInteractive() error {
	if !c.readyForInteractive() {
		err := fmt.Errorf("StopInteractive called before initialization completed (state %s)", c.state)
		c.queueError(ErrorKindMisuse, defaultErrorCode, err.Error())
		return err
	}
	c.sendMethod(methodReady, readyPayload{IsReady: false}, false)
	c.setInteractivityState(InteractivityPending)
	return nil
}

func (c *Client) readyForInteractive() bool {
	switch c.state {
	case InteractivityInitialized, InteractivityPending, InteractivityEnabled, InteractivityDisabled:
		return true
	}
	return false
}

// TriggerCooldown disables the button on every viewer's screen until
// now+durationMS. Sub-second durations usually mean the caller passed
// seconds; they are hinted at but still sent.
func (c *Client) TriggerCooldown(controlID string, durationMS int64) error {
	ctl, ok := c.controls[controlID]
	if !ok || ctl.Kind != ControlKindButton {
		return fmt.Errorf("no button with id %q", controlID)
	}
	if durationMS < cooldownHintFloorMS {
		c.logger.Printf("cooldown of %dms on %q is under a second, did you mean seconds?", durationMS, controlID)
	}
	expiration := time.Now().UnixMilli() + durationMS
	ctl.CooldownExpirationMS = expiration
	cooldown := expiration
	c.sendMethod(methodUpdateControls, updateControlsParams{
		SceneID: ctl.SceneID,
		Controls: []controlPatch{{
			ControlID: ctl.ControlID,
			Etag:      ctl.Etag,
			Cooldown:  &cooldown,
		}},
	}, false)
	return nil
}

// SetCurrentScene rebinds the default group to the given scene.
func (c *Client) SetCurrentScene(sceneID string) error {
	return c.SetCurrentSceneForGroup(DefaultGroupID, sceneID)
}

// SetCurrentSceneForGroup rebinds one group to the given scene. The local
// binding updates immediately; the service reply only carries errors.
func (c *Client) SetCurrentSceneForGroup(groupID, sceneID string) error {
	if groupID == "" || sceneID == "" {
		return fmt.Errorf("group id and scene id are required")
	}
	g, ok := c.groups[groupID]
	if !ok {
		g = &Group{GroupID: groupID}
		c.groups[groupID] = g
	}
	g.SceneID = sceneID
	c.sendMethod(methodSetCurrentScene, setCurrentSceneParams{GroupID: groupID, SceneID: sceneID}, false)
	return nil
}

// CreateGroups registers new groups with the service.
func (c *Client) CreateGroups(groups []Group) error {
	if len(groups) == 0 {
		return fmt.Errorf("no groups given")
	}
	entries := make([]groupEntry, 0, len(groups))
	for _, g := range groups {
		if g.GroupID == "" {
			return fmt.Errorf("group id is required")
		}
		sceneID := g.SceneID
		if sceneID == "" {
			sceneID = DefaultSceneID
		}
		entries = append(entries, groupEntry{GroupID: g.GroupID, SceneID: sceneID})
	}
	c.sendMethod(methodCreateGroups, createGroupsParams{Groups: entries}, false)
	return nil
}

// MoveGroupToScene updates one group's scene binding through updateGroups.
func (c *Client) MoveGroupToScene(groupID, sceneID string) error {
	if groupID == "" || sceneID == "" {
		return fmt.Errorf("group id and scene id are required")
	}
	g, ok := c.groups[groupID]
	if !ok {
		return fmt.Errorf("no group with id %q", groupID)
	}
	g.SceneID = sceneID
	c.sendMethod(methodUpdateGroups, updateGroupsParams{
		Groups: []groupEntry{{GroupID: g.GroupID, SceneID: sceneID, Etag: g.Etag}},
	}, false)
	return nil
}

// CaptureTransaction charges the sparks held by a transaction from a button
// press.
func (c *Client) CaptureTransaction(transactionID string) error {
	if transactionID == "" {
		return fmt.Errorf("transaction id is required")
	}
	c.sendMethod(methodCapture, captureParams{TransactionID: transactionID}, false)
	return nil
}

// SendMessage sends an arbitrary method frame with the given params. The
// reply is matched and surfaced through OnError when it carries an error.
func (c *Client) SendMessage(method string, params any) error {
	if method == "" {
		return fmt.Errorf("method name is required")
	}
	if c.sendMethod(method, params, false) == 0 {
		return fmt.Errorf("send %s failed", method)
	}
	return nil
}

// SendRawMessage writes a preformatted frame verbatim. No id is assigned and
// no reply will be matched.
func (c *Client) SendRawMessage(text string) error {
	if c.transport == nil || !c.transport.Connected() {
		return fmt.Errorf("transport not open")
	}
	if err := c.transport.Send(text); err != nil {
		return err
	}
	c.telemetry.RecordFrameSent()
	return nil
}

// SetControlDisabled toggles a control on every viewer's screen.
func (c *Client) SetControlDisabled(controlID string, disabled bool) error {
	ctl, ok := c.controls[controlID]
	if !ok {
		return fmt.Errorf("no control with id %q", controlID)
	}
	ctl.Disabled = disabled
	flag := disabled
	c.sendMethod(methodUpdateControls, updateControlsParams{
		SceneID: ctl.SceneID,
		Controls: []controlPatch{{
			ControlID: ctl.ControlID,
			Etag:      ctl.Etag,
			Disabled:  &flag,
		}},
	}, false)
	return nil
}

// SetButtonText replaces the label on a button.
func (c *Client) SetButtonText(controlID, text string) error {
	return c.setButtonProperties(controlID, controlPatch{Text: &text}, func(ctl *Control) {
		ctl.HelpText = text
	})
}

// SetButtonCost replaces the spark cost on a button.
func (c *Client) SetButtonCost(controlID string, cost uint32) error {
	return c.setButtonProperties(controlID, controlPatch{Cost: &cost}, func(ctl *Control) {
		ctl.Cost = cost
	})
}

// SetProgress updates the fill bar on a button, clamped to [0, 1].
func (c *Client) SetProgress(controlID string, progress float64) error {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	return c.setButtonProperties(controlID, controlPatch{Progress: &progress}, func(ctl *Control) {
		ctl.Progress = progress
	})
}

func (c *Client) setButtonProperties(controlID string, patch controlPatch, apply func(*Control)) error {
	ctl, ok := c.controls[controlID]
	if !ok || ctl.Kind != ControlKindButton {
		return fmt.Errorf("no button with id %q", controlID)
	}
	apply(ctl)
	patch.ControlID = ctl.ControlID
	patch.Etag = ctl.Etag
	c.sendMethod(methodSetButtonControlProperties, updateControlsParams{
		SceneID:  ctl.SceneID,
		Controls: []controlPatch{patch},
	}, false)
	return nil
}

// SetJoystickCoordinates moves the rendered stick position for every viewer.
func (c *Client) SetJoystickCoordinates(controlID string, x, y float64) error {
	ctl, ok := c.controls[controlID]
	if !ok || ctl.Kind != ControlKindJoystick {
		return fmt.Errorf("no joystick with id %q", controlID)
	}
	c.sendMethod(methodSetJoystickCoordinates, updateControlsParams{
		SceneID: ctl.SceneID,
		Controls: []controlPatch{{
			ControlID: ctl.ControlID,
			Etag:      ctl.Etag,
			X:         &x,
			Y:         &y,
		}},
	}, false)
	return nil
}
