package client

import "testing"

func TestScenesReplaceRebuildsProjections(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	c.applyScenesReplace(scenesPayload{Scenes: []sceneEntry{{
		SceneID: "stage",
		Controls: []controlEntry{
			{ControlID: "fire", Kind: "button", Cost: 50},
			{ControlID: "stick", Kind: "joystick"},
		},
	}}})

	if len(c.Buttons()) != 1 || len(c.Joysticks()) != 1 {
		t.Fatalf("projections out of step: %d buttons, %d joysticks", len(c.Buttons()), len(c.Joysticks()))
	}

	c.applyScenesReplace(scenesPayload{Scenes: []sceneEntry{{
		SceneID:  "stage",
		Controls: []controlEntry{{ControlID: "fire", Kind: "button"}},
	}}})

	if len(c.Joysticks()) != 0 {
		t.Fatalf("stale joystick survived a bulk replace")
	}
	if _, ok := c.ControlByID("stick"); ok {
		t.Fatalf("stale control survived a bulk replace")
	}
}

func TestControlUpdateMovesBetweenProjections(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	c.applyControlUpdate(controlUpdatePayload{
		SceneID:  "stage",
		Controls: []controlEntry{{ControlID: "c1", Kind: "button", Etag: "1"}},
	})
	if len(c.buttons) != 1 || len(c.joysticks) != 0 {
		t.Fatalf("expected a button after first update")
	}

	c.applyControlUpdate(controlUpdatePayload{
		SceneID:  "stage",
		Controls: []controlEntry{{ControlID: "c1", Kind: "joystick", Etag: "2"}},
	})

	if len(c.buttons) != 0 || len(c.joysticks) != 1 {
		t.Fatalf("control did not move projections on kind change")
	}
	ctl, ok := c.ControlByID("c1")
	if !ok || ctl.Etag != "2" {
		t.Fatalf("incoming etag did not supersede the local copy: %+v", ctl)
	}

	scene := c.sceneByID("stage")
	if len(scene.Controls) != 1 || scene.Controls[0].ControlID != "c1" {
		t.Fatalf("scene view disagrees with the global table: %+v", scene.Controls)
	}
}

func TestDefaultGroupAndSceneSynthesized(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	group := c.Group(DefaultGroupID)
	if group.GroupID != DefaultGroupID || group.SceneID != DefaultSceneID {
		t.Fatalf("default group not synthesized: %+v", group)
	}

	scene := c.CurrentScene()
	if scene.SceneID != DefaultSceneID {
		t.Fatalf("default scene not synthesized: %+v", scene)
	}
}

func TestGroupReconcileOverwritesBinding(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	c.applyGroups(groupsPayload{Groups: []groupEntry{{GroupID: "vip", SceneID: "lobby", Etag: "1"}}})
	c.applyGroups(groupsPayload{Groups: []groupEntry{{GroupID: "vip", SceneID: "arena", Etag: "2"}}})

	g := c.Group("vip")
	if g.SceneID != "arena" || g.Etag != "2" {
		t.Fatalf("group reconcile did not overwrite: %+v", g)
	}
	if len(c.groups) != 1 {
		t.Fatalf("group reconcile duplicated the entry")
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	c.applyScenesReplace(scenesPayload{Scenes: []sceneEntry{{
		SceneID:  "stage",
		Controls: []controlEntry{{ControlID: "fire", Kind: "button"}},
	}}})

	buttons := c.Buttons()
	buttons[0].Disabled = true
	if ctl, _ := c.ControlByID("fire"); ctl.Disabled {
		t.Fatalf("mutating a snapshot leaked into the mirror")
	}

	scenes := c.Scenes()
	scenes[0].Controls[0].HelpText = "mutated"
	if ctl, _ := c.ControlByID("fire"); ctl.HelpText == "mutated" {
		t.Fatalf("mutating a scene snapshot leaked into the mirror")
	}
}
