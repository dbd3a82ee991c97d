package client

// applyScenesReplace installs the full scene list from a getScenes reply,
// discarding the previous mirror and rebuilding the control indexes.
func (c *Client) applyScenesReplace(payload scenesPayload) {
	c.scenes = c.scenes[:0]
	c.controls = make(map[string]*Control)
	c.buttons = make(map[string]*Control)
	c.joysticks = make(map[string]*Control)
	for _, entry := range payload.Scenes {
		c.appendScene(entry)
	}
}

// applySceneCreate appends pushed scenes. A pushed scene whose id is already
// known replaces that scene's etag and controls instead of adding a duplicate.
func (c *Client) applySceneCreate(payload scenesPayload) {
	for _, entry := range payload.Scenes {
		if existing := c.findScene(entry.SceneID); existing != nil {
			c.replaceSceneControls(existing, entry)
			continue
		}
		c.appendScene(entry)
	}
}

func (c *Client) appendScene(entry sceneEntry) {
	scene := &Scene{SceneID: entry.SceneID, Etag: entry.Etag}
	for _, ce := range entry.Controls {
		ctl := controlFromEntry(entry.SceneID, ce)
		scene.Controls = append(scene.Controls, ctl)
		c.indexControl(ctl)
	}
	c.scenes = append(c.scenes, scene)
}

func (c *Client) replaceSceneControls(scene *Scene, entry sceneEntry) {
	for _, old := range scene.Controls {
		c.unindexControl(old)
	}
	scene.Etag = entry.Etag
	scene.Controls = scene.Controls[:0]
	for _, ce := range entry.Controls {
		ctl := controlFromEntry(entry.SceneID, ce)
		scene.Controls = append(scene.Controls, ctl)
		c.indexControl(ctl)
	}
}

func (c *Client) findScene(sceneID string) *Scene {
	for _, s := range c.scenes {
		if s.SceneID == sceneID {
			return s
		}
	}
	return nil
}

// sceneByID returns a copy of the local scene, synthesizing an empty default
// scene when the server has not announced one yet.
func (c *Client) sceneByID(sceneID string) Scene {
	if s := c.findScene(sceneID); s != nil {
		return cloneScene(s)
	}
	if sceneID == DefaultSceneID {
		return Scene{SceneID: DefaultSceneID}
	}
	return Scene{SceneID: sceneID}
}
