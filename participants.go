package client

import (
	"playlink/client/logging"
	"playlink/client/logging/lifecycle"
)

// upsertParticipant copies the wire fields over the local entry keyed by user
// id, appending when absent. The session index is kept in step so giveInput
// routing stays O(1).
func (c *Client) upsertParticipant(entry participantEntry) *Participant {
	p, ok := c.participants[entry.UserID]
	if !ok {
		p = &Participant{UserID: entry.UserID}
		c.participants[entry.UserID] = p
	}
	if p.SessionID != "" && p.SessionID != entry.SessionID {
		delete(c.sessionToUser, p.SessionID)
	}
	p.SessionID = entry.SessionID
	p.Username = entry.Username
	p.Level = entry.Level
	p.GroupID = entry.GroupID
	p.ConnectedAt = millisToTime(entry.ConnectedAt)
	p.LastInputAt = millisToTime(entry.LastInputAt)
	p.InputDisabled = entry.Disabled
	p.Etag = entry.Etag
	if entry.SessionID != "" {
		c.sessionToUser[entry.SessionID] = entry.UserID
	}
	return p
}

func (c *Client) applyParticipantJoin(payload participantsPayload) {
	for _, entry := range payload.Participants {
		p := c.upsertParticipant(entry)
		p.State = ParticipantJoined
		if p.InputDisabled {
			p.State = ParticipantInputDisabled
		}
		c.announceParticipant(p)
	}
}

// applyParticipantLeave flips matching entries to Left without removing
// them, so a later join or update can revive the same record.
func (c *Client) applyParticipantLeave(payload participantsPayload) {
	for _, entry := range payload.Participants {
		p, ok := c.participants[entry.UserID]
		if !ok {
			continue
		}
		p.State = ParticipantLeft
		p.Etag = entry.Etag
		c.announceParticipant(p)
	}
}

func (c *Client) applyParticipantUpdate(payload participantsPayload) {
	for _, entry := range payload.Participants {
		prior, existed := c.participants[entry.UserID]
		priorState := ParticipantJoined
		if existed {
			priorState = prior.State
		}
		p := c.upsertParticipant(entry)
		switch {
		case entry.Disabled:
			p.State = ParticipantInputDisabled
		case priorState == ParticipantInputDisabled:
			p.State = ParticipantJoined
		default:
			p.State = priorState
		}
		c.announceParticipant(p)
	}
}

func (c *Client) announceParticipant(p *Participant) {
	c.queueOut(participantOut{participant: *p, state: p.State})
	lifecycle.ParticipantChanged(c.runCtx, c.pub, c.tick, logging.EntityRef{
		Kind: logging.EntityKindParticipant,
		ID:   p.SessionID,
	}, lifecycle.ParticipantPayload{
		UserID: p.UserID,
		State:  p.State.String(),
	})
}

func (c *Client) participantBySession(sessionID string) (*Participant, bool) {
	userID, ok := c.sessionToUser[sessionID]
	if !ok {
		return nil, false
	}
	p, ok := c.participants[userID]
	return p, ok
}
