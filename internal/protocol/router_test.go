package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spyword/internal/engine"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/testutil"
)

// fakeEngine records calls and returns canned results
type fakeEngine struct {
	calls    []string
	lastCode string
	lastConn model.ConnID
	spyCount int
	leaveFor model.PlayerID
	err      error
	view     *engine.SessionView
	role     *model.RoleInfo
}

func (f *fakeEngine) record(call string, conn model.ConnID, code string) error {
	f.calls = append(f.calls, call)
	f.lastConn = conn
	f.lastCode = code
	return f.err
}

func (f *fakeEngine) Register(_ context.Context, conn model.ConnID, name string, existingID model.PlayerID) (*model.Player, error) {
	if err := f.record("register", conn, ""); err != nil {
		return nil, err
	}
	id := existingID
	if id == "" {
		id = "new-id"
	}
	return &model.Player{ID: id, DisplayName: name}, nil
}

func (f *fakeEngine) CreateSession(_ context.Context, conn model.ConnID, spyCount int) (*engine.SessionView, error) {
	f.spyCount = spyCount
	if err := f.record("create", conn, ""); err != nil {
		return nil, err
	}
	return f.view, nil
}

func (f *fakeEngine) JoinSession(_ context.Context, conn model.ConnID, code string) (*engine.SessionView, error) {
	if err := f.record("join", conn, code); err != nil {
		return nil, err
	}
	return f.view, nil
}

func (f *fakeEngine) StartSession(_ context.Context, conn model.ConnID, code string) error {
	return f.record("start", conn, code)
}

func (f *fakeEngine) EndSession(_ context.Context, conn model.ConnID, code string) error {
	return f.record("end", conn, code)
}

func (f *fakeEngine) RestartSession(_ context.Context, conn model.ConnID, code string) error {
	return f.record("restart", conn, code)
}

func (f *fakeEngine) SetSpyCount(_ context.Context, conn model.ConnID, code string, spyCount int) (*engine.SessionView, error) {
	f.spyCount = spyCount
	if err := f.record("setSpyCount", conn, code); err != nil {
		return nil, err
	}
	return f.view, nil
}

func (f *fakeEngine) RequestRoleInfo(_ context.Context, conn model.ConnID) (*model.RoleInfo, error) {
	if err := f.record("role", conn, ""); err != nil {
		return nil, err
	}
	return f.role, nil
}

func (f *fakeEngine) LeaveSession(_ context.Context, conn model.ConnID, code string, playerID model.PlayerID) error {
	f.leaveFor = playerID
	return f.record("leave", conn, code)
}

type RouterSuite struct {
	suite.Suite
	engine *fakeEngine
	router *Router
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.engine = &fakeEngine{
		view: &engine.SessionView{
			Code:              "ABC234",
			HostID:            "host",
			Status:            model.StatusWaiting,
			SpyCount:          2,
			EffectiveSpyCount: 1,
			MinPlayersToStart: 3,
			Members:           []model.MemberView{{ID: "host", Name: "Alice", IsHost: true}},
		},
	}
	s.router = NewRouter(s.engine, testutil.NopLogger())
}

func (s *RouterSuite) handle(raw string) *Frame {
	return s.router.Handle(context.Background(), "conn-1", []byte(raw))
}

func (s *RouterSuite) payload(frame *Frame) map[string]any {
	s.Require().NotNil(frame)
	s.Require().Nil(frame.Error)
	var out map[string]any
	s.Require().NoError(json.Unmarshal(frame.Payload, &out))
	return out
}

func (s *RouterSuite) TestRegisterEchoesCorrelationID() {
	resp := s.handle(`{"kind":"request","id":"7","type":"register","payload":{"name":"Alice"}}`)

	s.Equal(KindResponse, resp.Kind)
	s.Equal("7", resp.ID)
	s.Equal(TypeRegister, resp.Type)
	s.Equal("new-id", s.payload(resp)["id"])
	s.Equal(model.ConnID("conn-1"), s.engine.lastConn)
}

func (s *RouterSuite) TestRegisterWithExistingID() {
	resp := s.handle(`{"id":"1","type":"register","payload":{"name":"Alice","existingId":"p-9"}}`)
	s.Equal("p-9", s.payload(resp)["id"])
}

func (s *RouterSuite) TestCreateSessionDefaultsSpyCount() {
	resp := s.handle(`{"id":"1","type":"createSession"}`)

	body := s.payload(resp)
	s.Equal("ABC234", body["sessionId"])
	s.EqualValues(2, body["spyCount"])
	s.EqualValues(3, body["minPlayersToStart"])
	s.Equal(0, s.engine.spyCount)

	s.handle(`{"id":"2","type":"createSession","payload":{"spyCount":3}}`)
	s.Equal(3, s.engine.spyCount)
}

func (s *RouterSuite) TestJoinSessionResponse() {
	s.engine.view.Reconnected = true
	resp := s.handle(`{"id":"1","type":"joinSession","payload":{"sessionId":"abc234"}}`)

	body := s.payload(resp)
	s.Equal("abc234", s.engine.lastCode)
	s.Equal("host", body["hostId"])
	s.Equal("waiting", body["status"])
	s.EqualValues(1, body["effectiveSpyCount"])
	s.Equal(true, body["reconnected"])
	s.Len(body["members"], 1)
}

func (s *RouterSuite) TestSessionActions() {
	for typ, call := range map[string]string{
		TypeStartSession:   "start",
		TypeEndSession:     "end",
		TypeRestartSession: "restart",
	} {
		resp := s.handle(`{"id":"1","type":"` + typ + `","payload":{"sessionId":"ABC234"}}`)
		s.Equal("{}", string(resp.Payload), typ)
		s.Equal(call, s.engine.calls[len(s.engine.calls)-1])
		s.Equal("ABC234", s.engine.lastCode)
	}
}

func (s *RouterSuite) TestRequestRoleInfoSerializesNullWord() {
	hint := "Coast"
	s.engine.role = &model.RoleInfo{Role: model.RoleSpy, Hint: &hint}

	resp := s.handle(`{"id":"1","type":"requestRoleInfo","payload":{}}`)

	s.JSONEq(`{"role":"spy","word":null,"hint":"Coast"}`, string(resp.Payload))
}

func (s *RouterSuite) TestSetSpyCount() {
	resp := s.handle(`{"id":"1","type":"setSpyCount","payload":{"sessionId":"ABC234","spyCount":2}}`)

	s.JSONEq(`{"spyCount":2,"effectiveSpyCount":1}`, string(resp.Payload))
	s.Equal(2, s.engine.spyCount)
}

func (s *RouterSuite) TestLeaveSessionAsNotification() {
	resp := s.handle(`{"type":"leaveSession","payload":{"sessionId":"ABC234","playerId":"p-1"}}`)

	s.Nil(resp)
	s.Equal(model.PlayerID("p-1"), s.engine.leaveFor)
}

func (s *RouterSuite) TestNotificationErrorsAreSilent() {
	s.engine.err = model.ErrNotRegistered
	s.Nil(s.handle(`{"type":"startSession","payload":{"sessionId":"ABC234"}}`))
}

func (s *RouterSuite) TestPing() {
	resp := s.handle(`{"id":"p","type":"ping"}`)
	s.Equal("{}", string(resp.Payload))
	s.Empty(s.engine.calls)
}

func (s *RouterSuite) TestEngineErrorsMapToCodes() {
	s.engine.err = model.ErrAlreadyStarted
	resp := s.handle(`{"id":"1","type":"joinSession","payload":{"sessionId":"ABC234"}}`)

	s.Require().NotNil(resp.Error)
	s.Equal(CodeStateConflict, resp.Error.Code)
	s.Equal("1", resp.ID)
	s.Nil(resp.Payload)
}

func (s *RouterSuite) TestUnknownType() {
	resp := s.handle(`{"id":"1","type":"vote"}`)
	s.Require().NotNil(resp.Error)
	s.Equal(CodeValidation, resp.Error.Code)
}

func (s *RouterSuite) TestMalformedFrame() {
	resp := s.handle(`{not json`)
	s.Require().NotNil(resp)
	s.Equal(CodeValidation, resp.Error.Code)
}

func (s *RouterSuite) TestMalformedPayload() {
	resp := s.handle(`{"id":"1","type":"setSpyCount","payload":{"spyCount":"two"}}`)
	s.Require().NotNil(resp.Error)
	s.Equal(CodeValidation, resp.Error.Code)
	s.Empty(s.engine.calls)
}

func (s *RouterSuite) TestWrongKindRejected() {
	resp := s.handle(`{"kind":"event","id":"1","type":"ping"}`)
	s.Require().NotNil(resp.Error)
	s.Equal(CodeValidation, resp.Error.Code)
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{model.ErrEmptyName, CodeValidation},
		{model.ErrInsufficientPlayers, CodeValidation},
		{model.ErrNotHost, CodeNotHost},
		{model.ErrNotRegistered, CodeUnauthorized},
		{model.ErrForbidden, CodeForbidden},
		{model.ErrSessionNotFound, CodeNotFound},
		{model.ErrNotInSession, CodeNotFound},
		{model.ErrAlreadyStarted, CodeStateConflict},
		{model.ErrNotFinished, CodeStateConflict},
		{model.PersistenceError("save", errors.New("disk full")), CodePersistence},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorFor(tt.err).Code)
		})
	}
}

func TestInternalErrorsHideMessage(t *testing.T) {
	body := ErrorFor(errors.New("secret database detail"))
	assert.NotContains(t, body.Message, "secret")
}

func TestEventFrame(t *testing.T) {
	frame, err := EventFrame(model.Event{
		Type:    model.EventSpyCountChanged,
		Session: "ABC234",
		Payload: model.SpyCountChangedPayload{SpyCount: 3, EffectiveSpyCount: 1},
	})
	require.NoError(t, err)

	data, err := Encode(frame)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"event","type":"spyCountChanged","payload":{"spyCount":3,"effectiveSpyCount":1}}`, string(data))
}
