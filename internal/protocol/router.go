package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/spyword/internal/engine"
	"github.com/mcoot/spyword/internal/model"
)

// Engine is the set of requests a connection can make
type Engine interface {
	Register(ctx context.Context, conn model.ConnID, name string, existingID model.PlayerID) (*model.Player, error)
	CreateSession(ctx context.Context, conn model.ConnID, spyCount int) (*engine.SessionView, error)
	JoinSession(ctx context.Context, conn model.ConnID, code string) (*engine.SessionView, error)
	StartSession(ctx context.Context, conn model.ConnID, code string) error
	EndSession(ctx context.Context, conn model.ConnID, code string) error
	RestartSession(ctx context.Context, conn model.ConnID, code string) error
	SetSpyCount(ctx context.Context, conn model.ConnID, code string, spyCount int) (*engine.SessionView, error)
	RequestRoleInfo(ctx context.Context, conn model.ConnID) (*model.RoleInfo, error)
	LeaveSession(ctx context.Context, conn model.ConnID, code string, playerID model.PlayerID) error
}

type handlerFunc func(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error)

// Router decodes request frames and dispatches them to the engine
type Router struct {
	engine   Engine
	logger   *slog.Logger
	handlers map[string]handlerFunc
}

// NewRouter creates a Router backed by the engine
func NewRouter(e Engine, logger *slog.Logger) *Router {
	r := &Router{
		engine: e,
		logger: logger.With(slog.String("component", "protocol")),
	}
	r.handlers = map[string]handlerFunc{
		TypeRegister:        r.register,
		TypeCreateSession:   r.createSession,
		TypeJoinSession:     r.joinSession,
		TypeStartSession:    r.sessionAction(e.StartSession),
		TypeEndSession:      r.sessionAction(e.EndSession),
		TypeRestartSession:  r.sessionAction(e.RestartSession),
		TypeRequestRoleInfo: r.requestRoleInfo,
		TypeSetSpyCount:     r.setSpyCount,
		TypeLeaveSession:    r.leaveSession,
		TypePing:            r.ping,
	}
	return r
}

// Handle processes one inbound frame and returns the response to send, if any.
// Frames without an ID are notifications and never get a response.
func (r *Router) Handle(ctx context.Context, conn model.ConnID, data []byte) *Frame {
	var req Frame
	if err := json.Unmarshal(data, &req); err != nil {
		r.logger.Debug("malformed frame", slog.String("conn_id", string(conn)), slog.String("error", err.Error()))
		return &Frame{Kind: KindResponse, Error: ErrorFor(fmt.Errorf("%w: malformed frame", model.ErrInvalidRequest))}
	}
	if req.Kind != "" && req.Kind != KindRequest {
		return r.respond(&req, nil, fmt.Errorf("%w: unexpected frame kind %q", model.ErrInvalidRequest, req.Kind))
	}

	handler, ok := r.handlers[req.Type]
	if !ok {
		return r.respond(&req, nil, fmt.Errorf("%w: unknown request type %q", model.ErrInvalidRequest, req.Type))
	}

	result, err := handler(ctx, conn, req.Payload)
	if err != nil {
		r.logger.Debug("request failed",
			slog.String("conn_id", string(conn)),
			slog.String("type", req.Type),
			slog.String("error", err.Error()),
		)
	}
	return r.respond(&req, result, err)
}

func (r *Router) respond(req *Frame, result any, err error) *Frame {
	if req.ID == "" {
		return nil
	}
	resp := &Frame{Kind: KindResponse, ID: req.ID, Type: req.Type}
	if err != nil {
		resp.Error = ErrorFor(err)
		return resp
	}
	if result == nil {
		result = Empty{}
	}
	payload, mErr := json.Marshal(result)
	if mErr != nil {
		r.logger.Error("failed to encode response", slog.String("type", req.Type), slog.String("error", mErr.Error()))
		resp.Error = ErrorFor(mErr)
		return resp
	}
	resp.Payload = payload
	return resp
}

func decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	return v, nil
}

func (r *Router) register(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error) {
	req, err := decode[RegisterRequest](payload)
	if err != nil {
		return nil, err
	}
	p, err := r.engine.Register(ctx, conn, req.Name, req.ExistingID)
	if err != nil {
		return nil, err
	}
	return RegisterResponse{ID: p.ID}, nil
}

func (r *Router) createSession(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error) {
	req, err := decode[CreateSessionRequest](payload)
	if err != nil {
		return nil, err
	}
	spyCount := 0
	if req.SpyCount != nil {
		spyCount = *req.SpyCount
	}
	view, err := r.engine.CreateSession(ctx, conn, spyCount)
	if err != nil {
		return nil, err
	}
	return CreateSessionResponse{
		SessionID:         view.Code,
		SpyCount:          view.SpyCount,
		MinPlayersToStart: view.MinPlayersToStart,
	}, nil
}

func (r *Router) joinSession(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error) {
	req, err := decode[SessionRequest](payload)
	if err != nil {
		return nil, err
	}
	view, err := r.engine.JoinSession(ctx, conn, req.SessionID)
	if err != nil {
		return nil, err
	}
	return JoinSessionResponse{
		SessionID:         view.Code,
		Members:           view.Members,
		HostID:            view.HostID,
		Status:            view.Status,
		SpyCount:          view.SpyCount,
		EffectiveSpyCount: view.EffectiveSpyCount,
		MinPlayersToStart: view.MinPlayersToStart,
		Reconnected:       view.Reconnected,
	}, nil
}

// sessionAction adapts a request that only names a session
func (r *Router) sessionAction(action func(ctx context.Context, conn model.ConnID, code string) error) handlerFunc {
	return func(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error) {
		req, err := decode[SessionRequest](payload)
		if err != nil {
			return nil, err
		}
		return nil, action(ctx, conn, req.SessionID)
	}
}

func (r *Router) requestRoleInfo(ctx context.Context, conn model.ConnID, _ json.RawMessage) (any, error) {
	info, err := r.engine.RequestRoleInfo(ctx, conn)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (r *Router) setSpyCount(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error) {
	req, err := decode[SetSpyCountRequest](payload)
	if err != nil {
		return nil, err
	}
	view, err := r.engine.SetSpyCount(ctx, conn, req.SessionID, req.SpyCount)
	if err != nil {
		return nil, err
	}
	return SetSpyCountResponse{SpyCount: view.SpyCount, EffectiveSpyCount: view.EffectiveSpyCount}, nil
}

func (r *Router) leaveSession(ctx context.Context, conn model.ConnID, payload json.RawMessage) (any, error) {
	req, err := decode[LeaveSessionRequest](payload)
	if err != nil {
		return nil, err
	}
	return nil, r.engine.LeaveSession(ctx, conn, req.SessionID, req.PlayerID)
}

func (r *Router) ping(context.Context, model.ConnID, json.RawMessage) (any, error) {
	return nil, nil
}
