package client

func controlFromEntry(sceneID string, entry controlEntry) *Control {
	return &Control{
		ControlID:            entry.ControlID,
		SceneID:              sceneID,
		Kind:                 parseControlKind(entry.Kind),
		Disabled:             entry.Disabled,
		HelpText:             entry.Text,
		Etag:                 entry.Etag,
		Cost:                 entry.Cost,
		CooldownExpirationMS: entry.Cooldown,
		Progress:             entry.Progress,
	}
}

// indexControl registers the control in the global table and the projection
// for its kind. The global table is the source of truth; the projections
// exist for typed iteration.
func (c *Client) indexControl(ctl *Control) {
	c.controls[ctl.ControlID] = ctl
	switch ctl.Kind {
	case ControlKindButton:
		c.buttons[ctl.ControlID] = ctl
	case ControlKindJoystick:
		c.joysticks[ctl.ControlID] = ctl
	}
}

func (c *Client) unindexControl(ctl *Control) {
	delete(c.controls, ctl.ControlID)
	delete(c.buttons, ctl.ControlID)
	delete(c.joysticks, ctl.ControlID)
}

// applyControlUpdate replaces controls under one scene. A control that
// changed kind moves between projections because the old record is unindexed
// before the new one is inserted.
func (c *Client) applyControlUpdate(payload controlUpdatePayload) {
	scene := c.findScene(payload.SceneID)
	if scene == nil {
		scene = &Scene{SceneID: payload.SceneID}
		c.scenes = append(c.scenes, scene)
	}
	for _, entry := range payload.Controls {
		incoming := controlFromEntry(payload.SceneID, entry)
		if old, ok := c.controls[entry.ControlID]; ok {
			c.unindexControl(old)
			c.removeSceneControl(old)
		}
		scene.Controls = append(scene.Controls, incoming)
		c.indexControl(incoming)
	}
}

func (c *Client) removeSceneControl(ctl *Control) {
	scene := c.findScene(ctl.SceneID)
	if scene == nil {
		return
	}
	for i, existing := range scene.Controls {
		if existing.ControlID == ctl.ControlID {
			scene.Controls = append(scene.Controls[:i], scene.Controls[i+1:]...)
			return
		}
	}
}
