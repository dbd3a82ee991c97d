package client

import "testing"

func TestJoinThenLeaveKeepsEntry(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	var states []ParticipantState
	c.OnParticipantStateChanged = func(p Participant, state ParticipantState) {
		if p.UserID != 42 {
			t.Fatalf("unexpected user id %d", p.UserID)
		}
		states = append(states, state)
	}

	pushServerFrame(c, methodFrame(methodOnParticipantJoin, participantsPayload{
		Participants: []participantEntry{{SessionID: "s1", UserID: 42, Username: "viewer"}},
	}))
	pushServerFrame(c, methodFrame(methodOnParticipantLeave, participantsPayload{
		Participants: []participantEntry{{SessionID: "s1", UserID: 42}},
	}))
	c.DoWork()

	if len(states) != 2 || states[0] != ParticipantJoined || states[1] != ParticipantLeft {
		t.Fatalf("expected Joined then Left, got %v", states)
	}

	participants := c.Participants()
	if len(participants) != 1 {
		t.Fatalf("expected the entry to survive the leave, got %d entries", len(participants))
	}
	if participants[0].State != ParticipantLeft {
		t.Fatalf("expected final state Left, got %s", participants[0].State)
	}
}

func TestRejoinRevivesSameEntry(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	join := participantsPayload{Participants: []participantEntry{{SessionID: "s1", UserID: 42}}}
	c.applyParticipantJoin(join)
	c.applyParticipantLeave(join)

	rejoin := participantsPayload{Participants: []participantEntry{{SessionID: "s2", UserID: 42, Username: "back"}}}
	c.applyParticipantJoin(rejoin)

	if len(c.participants) != 1 {
		t.Fatalf("rejoin duplicated the participant: %d entries", len(c.participants))
	}
	p := c.participants[42]
	if p.State != ParticipantJoined || p.SessionID != "s2" || p.Username != "back" {
		t.Fatalf("rejoin did not revive the entry: %+v", p)
	}
	if _, ok := c.participantBySession("s1"); ok {
		t.Fatalf("stale session index survived the rejoin")
	}
	if _, ok := c.participantBySession("s2"); !ok {
		t.Fatalf("new session is not routable")
	}
}

func TestUpdateTogglesInputDisabled(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	c.applyParticipantJoin(participantsPayload{
		Participants: []participantEntry{{SessionID: "s1", UserID: 7}},
	})

	c.applyParticipantUpdate(participantsPayload{
		Participants: []participantEntry{{SessionID: "s1", UserID: 7, Disabled: true}},
	})
	if c.participants[7].State != ParticipantInputDisabled {
		t.Fatalf("expected InputDisabled, got %s", c.participants[7].State)
	}

	c.applyParticipantUpdate(participantsPayload{
		Participants: []participantEntry{{SessionID: "s1", UserID: 7, Disabled: false}},
	})
	if c.participants[7].State != ParticipantJoined {
		t.Fatalf("expected Joined after re-enable, got %s", c.participants[7].State)
	}
}
