package session

import (
	"context"
	"log/slog"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/services/roles"
)

// reconnect handles a join from someone already seated in the session.
// Nothing about the round changes; a playing member gets their role again.
func (c *Controller) reconnect(ctx context.Context, session *model.Session, playerID model.PlayerID) (*JoinResult, error) {
	if player, err := c.players.Get(ctx, playerID); err == nil && player.CurrentSession != session.Code {
		if err := c.players.SetCurrentSession(ctx, playerID, session.Code); err != nil {
			return nil, err
		}
	}

	if session.Status == model.StatusPlaying {
		info, err := c.roleInfo(ctx, session, playerID)
		if err != nil {
			return nil, err
		}
		c.dispatcher.SendToPlayer(session, playerID, model.EventRoleAssigned, *info)
	}

	c.logger.Info("player reconnected",
		slog.String("session_code", string(session.Code)),
		slog.String("player_id", string(playerID)),
		slog.String("status", string(session.Status)),
	)
	return &JoinResult{Session: session, Reconnected: true}, nil
}

// RoleInfo returns the caller's private role view for their current round
func (c *Controller) RoleInfo(ctx context.Context, playerID model.PlayerID) (*model.RoleInfo, error) {
	player, err := c.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !player.InSession() {
		return nil, model.ErrNotInSession
	}
	session, err := c.sessions.Find(ctx, player.CurrentSession)
	if err != nil {
		return nil, err
	}
	if session.Status == model.StatusWaiting {
		return nil, model.ErrNotPlaying
	}
	return c.roleInfo(ctx, session, playerID)
}

// roleInfo builds the stored role view, regenerating a missing hint from the
// stored word. The word and role never change; a regenerated hint is kept.
func (c *Controller) roleInfo(ctx context.Context, session *model.Session, playerID model.PlayerID) (*model.RoleInfo, error) {
	role, ok := session.Roles[playerID]
	if !ok {
		return nil, model.ErrNotInSession
	}

	if session.SecretHint == "" && session.SecretWord != "" {
		if hint, found := c.words.HintFor(session.SecretWord); found && hint != "" {
			session.SecretHint = hint
			if err := c.sessions.Save(ctx, session); err != nil {
				return nil, err
			}
			c.logger.Warn("regenerated missing hint", slog.String("session_code", string(session.Code)))
		}
	}

	info := roles.InfoFor(role, session.SecretWord, session.SecretHint, session.HintToRegulars)
	return &info, nil
}
