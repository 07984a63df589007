package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spyword/internal/dependencies/mocks"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
	"github.com/mcoot/spyword/internal/services/binding"
	"github.com/mcoot/spyword/internal/services/dispatch"
	"github.com/mcoot/spyword/internal/services/player"
	"github.com/mcoot/spyword/internal/services/settings"
	"github.com/mcoot/spyword/internal/services/words"
	"github.com/mcoot/spyword/internal/storage/memory"
	"github.com/mcoot/spyword/internal/testutil"
)

var testWords = []model.WordEntry{
	{Word: "Lighthouse", Hints: []string{"Coast", "Beacon"}},
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	random     *mocks.MockRandom
	scheduler  *mocks.ManualScheduler
	mirror     *testutil.RecordingMirror
	transport  *testutil.RecordingTransport
	binder     *binding.Binder
	players    *player.Registry
	dispatcher *dispatch.Dispatcher
	settings   *settings.Service
	words      *words.Service
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	s.ctx = context.Background()
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.scheduler = mocks.NewManualScheduler()
	s.mirror = testutil.NewRecordingMirror()
	s.transport = testutil.NewRecordingTransport()
	s.binder = binding.New()
	s.players = player.NewRegistry(s.storage, clk, s.mirror, logger)
	s.dispatcher = dispatch.New(s.transport, s.binder, dispatch.DefaultConfig(), logger)
	s.settings = settings.New(persistence.Nop{}, model.DefaultSettings(), logger)

	var err error
	s.words, err = words.New(persistence.Nop{}, s.random, logger)
	s.Require().NoError(err)
	_, err = s.words.Replace(s.ctx, testWords)
	s.Require().NoError(err)

	registry := NewRegistry(s.storage, clk, s.random, s.mirror, s.scheduler, logger)
	s.controller = NewController(
		registry, s.players, s.dispatcher, s.settings, s.words,
		s.random, clk, s.scheduler, DefaultConfig(), logger,
	)
}

// Helpers

func conn(id model.PlayerID) model.ConnID {
	return model.ConnID("conn-" + string(id))
}

func (s *ControllerSuite) createPlayer(name string) model.PlayerID {
	p, err := s.players.Register(s.ctx, name, "")
	s.Require().NoError(err)
	s.binder.Bind(conn(p.ID), p.ID)
	return p.ID
}

func (s *ControllerSuite) createSession(host model.PlayerID, code string, spyCount int) model.SessionCode {
	s.random.QueueString(code)
	session, err := s.controller.CreateSession(s.ctx, host, spyCount)
	s.Require().NoError(err)
	return session.Code
}

// sessionWith creates a waiting session hosted by the first of n players
func (s *ControllerSuite) sessionWith(n, spyCount int) (model.SessionCode, []model.PlayerID) {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}
	ids := make([]model.PlayerID, n)
	for i := range ids {
		ids[i] = s.createPlayer(names[i])
	}
	code := s.createSession(ids[0], "ABC234", spyCount)
	for _, id := range ids[1:] {
		_, err := s.controller.Join(s.ctx, id, code)
		s.Require().NoError(err)
	}
	return code, ids
}

func (s *ControllerSuite) find(code model.SessionCode) *model.Session {
	session, err := s.controller.Registry().Find(s.ctx, code)
	s.Require().NoError(err)
	return session
}

func (s *ControllerSuite) seatOf(id model.PlayerID) model.SessionCode {
	p, err := s.players.Get(s.ctx, id)
	s.Require().NoError(err)
	return p.CurrentSession
}

func (s *ControllerSuite) roleEvents(id model.PlayerID) []model.RoleInfo {
	var out []model.RoleInfo
	for _, e := range s.transport.OfType(conn(id), model.EventRoleAssigned) {
		out = append(out, e.Payload.(model.RoleInfo))
	}
	return out
}

// Create

func (s *ControllerSuite) TestCreateSessionSeatsHost() {
	host := s.createPlayer("Alice")
	code := s.createSession(host, "ABC234", 0)

	session := s.find(code)
	s.Equal(model.StatusWaiting, session.Status)
	s.Equal(host, session.HostID)
	s.Equal([]model.PlayerID{host}, session.Members)
	s.Equal(model.DefaultSpyCount, session.SpyCount)
	s.Empty(session.SecretWord)
	s.Empty(session.Roles)
	s.Equal(code, s.seatOf(host))
}

func (s *ControllerSuite) TestCreateSessionClampsSpyCount() {
	host := s.createPlayer("Alice")

	s.Equal(1, s.find(s.createSession(host, "AAAAAA", 9)).SpyCount)
	s.Equal(3, s.find(s.createSession(host, "BBBBBB", 3)).SpyCount)
	s.Equal(1, s.find(s.createSession(host, "CCCCCC", -2)).SpyCount)
}

func (s *ControllerSuite) TestCreateSessionLeavesPreviousSession() {
	code, ids := s.sessionWith(2, 1)

	newCode := s.createSession(ids[0], "XYZ234", 1)

	old := s.find(code)
	s.Equal(model.StatusFinished, old.Status)
	s.Equal([]model.PlayerID{ids[1]}, old.Members)
	s.Len(s.transport.OfType(conn(ids[1]), model.EventHostLeft), 1)
	s.Equal(newCode, s.seatOf(ids[0]))
}

// Join

func (s *ControllerSuite) TestJoinAppendsAndBroadcasts() {
	code, ids := s.sessionWith(2, 1)

	session := s.find(code)
	s.Equal(ids, session.Members)
	s.Equal(code, s.seatOf(ids[1]))

	joined := s.transport.OfType(conn(ids[0]), model.EventMemberJoined)
	s.Require().Len(joined, 1)
	members := joined[0].Payload.(model.MemberJoinedPayload).Members
	s.Require().Len(members, 2)
	s.Equal("Alice", members[0].Name)
	s.True(members[0].IsHost)
	s.Equal("Bob", members[1].Name)
	s.False(members[1].IsHost)
	s.Empty(members[1].Role)

	s.Len(s.transport.OfType(conn(ids[1]), model.EventMemberJoined), 1)
}

func (s *ControllerSuite) TestJoinUnknownSession() {
	p := s.createPlayer("Alice")
	_, err := s.controller.Join(s.ctx, p, "ZZZZZZ")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestJoinStartedSessionRejected() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	late := s.createPlayer("Late")
	_, err := s.controller.Join(s.ctx, late, code)
	s.ErrorIs(err, model.ErrAlreadyStarted)
	s.ErrorIs(err, model.ErrStateConflict)
	s.Len(s.find(code).Members, 3)
}

// Start

func (s *ControllerSuite) TestStartRequiresHost() {
	code, ids := s.sessionWith(3, 1)

	err := s.controller.Start(s.ctx, ids[1], code)
	s.ErrorIs(err, model.ErrNotHost)
	s.Equal(model.StatusWaiting, s.find(code).Status)
}

func (s *ControllerSuite) TestStartRequiresMinimumPlayers() {
	code, ids := s.sessionWith(2, 1)

	err := s.controller.Start(s.ctx, ids[0], code)
	s.ErrorIs(err, model.ErrInsufficientPlayers)
	s.ErrorIs(err, model.ErrValidation)
	s.Equal(model.StatusWaiting, s.find(code).Status)
}

func (s *ControllerSuite) TestStartThreePlayers() {
	code, ids := s.sessionWith(3, 1)

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	session := s.find(code)
	s.Equal(model.StatusPlaying, session.Status)
	s.Equal(1, session.EffectiveSpyCount)
	s.Equal("Lighthouse", session.SecretWord)
	s.Contains(testWords[0].Hints, session.SecretHint)
	s.Len(session.Roles, 3)

	spies := 0
	for _, id := range ids {
		s.Len(s.transport.OfType(conn(id), model.EventSessionStarted), 1)

		infos := s.roleEvents(id)
		s.Require().Len(infos, 1)
		info := infos[0]
		s.Equal(session.Roles[id], info.Role)

		if info.Role == model.RoleSpy {
			spies++
			s.Nil(info.Word)
			s.Require().NotNil(info.Hint)
			s.Equal(session.SecretHint, *info.Hint)
		} else {
			s.Require().NotNil(info.Word)
			s.Equal(session.SecretWord, *info.Word)
			s.Nil(info.Hint)
		}
	}
	s.Equal(1, spies)

	s.Require().Equal(1, s.scheduler.Pending())
	s.Equal(500*time.Millisecond, s.scheduler.Tasks[0].Delay)
}

func (s *ControllerSuite) TestStartShowsHintToRegularsWhenEnabled() {
	s.Require().NoError(s.settings.Update(s.ctx, model.Settings{MinPlayersToStart: 3, ShowHintToRegulars: true}))
	code, ids := s.sessionWith(3, 1)

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	session := s.find(code)
	for _, id := range ids {
		info := s.roleEvents(id)[0]
		s.Require().NotNil(info.Hint)
		s.Equal(session.SecretHint, *info.Hint)
		if info.Role == model.RoleRegular {
			s.Require().NotNil(info.Word)
		} else {
			s.Nil(info.Word)
		}
	}
}

func (s *ControllerSuite) TestStartFiveSpiesFourMembers() {
	s.Require().NoError(s.settings.Update(s.ctx, model.Settings{MinPlayersToStart: 4}))
	code, ids := s.sessionWith(4, 5)

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	session := s.find(code)
	s.Equal(5, session.SpyCount)
	s.Equal(2, session.EffectiveSpyCount)

	spies := 0
	for _, role := range session.Roles {
		if role == model.RoleSpy {
			spies++
		}
	}
	s.Equal(2, spies)
}

func (s *ControllerSuite) TestSecondStartIsNoop() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	before := s.find(code)
	sent := s.transport.Total()

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	after := s.find(code)
	s.Equal(before.Roles, after.Roles)
	s.Equal(before.SecretWord, after.SecretWord)
	s.Equal(before.SecretHint, after.SecretHint)
	s.Equal(sent, s.transport.Total())
	s.Equal(1, s.scheduler.Pending())
}

func (s *ControllerSuite) TestStartFinishedSessionRejected() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))

	err := s.controller.Start(s.ctx, ids[0], code)
	s.ErrorIs(err, model.ErrNotWaiting)
}

// Role re-delivery

func (s *ControllerSuite) TestDelayedRedeliveryRepeatsRoles() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	s.scheduler.RunAll()

	for _, id := range ids {
		infos := s.roleEvents(id)
		s.Require().Len(infos, 2)
		s.Equal(infos[0], infos[1])
	}
}

func (s *ControllerSuite) TestDelayedRedeliverySkipsEndedRound() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	tasks := append([]mocks.ScheduledTask(nil), s.scheduler.Tasks...)

	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))
	s.Equal(0, s.scheduler.Pending())

	// Even if the task escaped cancellation it must not deliver anything
	tasks[0].Fn()
	for _, id := range ids {
		s.Len(s.roleEvents(id), 1)
	}
}

func (s *ControllerSuite) TestDelayedRedeliverySkipsVanishedSession() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	tasks := append([]mocks.ScheduledTask(nil), s.scheduler.Tasks...)

	for _, id := range ids {
		s.Require().NoError(s.controller.Leave(s.ctx, id, code))
	}
	s.Equal(0, s.scheduler.Pending())

	s.NotPanics(tasks[0].Fn)
}

func (s *ControllerSuite) TestRoleQueuedForUnboundMember() {
	code, ids := s.sessionWith(3, 1)
	s.binder.Unbind(conn(ids[2]))

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.Empty(s.roleEvents(ids[2]))
	s.Equal(1, s.dispatcher.Pending(ids[2]))

	s.binder.Bind(conn(ids[2]), ids[2])
	s.Equal(1, s.dispatcher.Flush(ids[2]))
	s.Len(s.roleEvents(ids[2]), 1)
}

func (s *ControllerSuite) TestQueuedRolesDroppedWhenRoundEnds() {
	code, ids := s.sessionWith(3, 1)
	s.binder.Unbind(conn(ids[2]))

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.scheduler.RunAll()
	s.Equal(2, s.dispatcher.Pending(ids[2]))

	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))
	s.Equal(0, s.dispatcher.Pending(ids[2]))
}

func (s *ControllerSuite) TestNoStaleRoleAfterRestart() {
	code, ids := s.sessionWith(3, 1)
	s.binder.Unbind(conn(ids[2]))

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.scheduler.RunAll()
	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))
	s.Require().NoError(s.controller.Restart(s.ctx, ids[0], code))

	s.binder.Bind(conn(ids[2]), ids[2])
	s.Equal(0, s.dispatcher.Flush(ids[2]))
	s.Empty(s.roleEvents(ids[2]))
	s.Equal(model.StatusWaiting, s.find(code).Status)
}

func (s *ControllerSuite) TestHostLeaveDropsQueuedRoles() {
	code, ids := s.sessionWith(3, 1)
	s.binder.Unbind(conn(ids[2]))

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.Equal(1, s.dispatcher.Pending(ids[2]))

	s.Require().NoError(s.controller.Leave(s.ctx, ids[0], code))
	s.Equal(0, s.dispatcher.Pending(ids[2]))
}

// End

func (s *ControllerSuite) TestEndRevealsRound() {
	code, ids := s.sessionWith(3, 1)

	err := s.controller.End(s.ctx, ids[0], code)
	s.ErrorIs(err, model.ErrNotPlaying)

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.ErrorIs(s.controller.End(s.ctx, ids[1], code), model.ErrNotHost)
	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))

	session := s.find(code)
	s.Equal(model.StatusFinished, session.Status)
	s.Equal("Lighthouse", session.SecretWord)

	ended := s.transport.OfType(conn(ids[1]), model.EventSessionEnded)
	s.Require().Len(ended, 1)
	payload := ended[0].Payload.(model.SessionEndedPayload)
	s.Equal(model.StatusFinished, payload.Status)
	s.Equal(session.SecretWord, payload.Word)
	s.Equal(session.SecretHint, payload.Hint)
	s.Require().Len(payload.Members, 3)
	for _, m := range payload.Members {
		s.Equal(session.Roles[m.ID], m.Role)
	}

	// Ending again is a no-op
	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))
	s.Len(s.transport.OfType(conn(ids[1]), model.EventSessionEnded), 1)
}

// Restart

func (s *ControllerSuite) TestRestart() {
	code, ids := s.sessionWith(3, 1)

	s.Require().NoError(s.controller.Restart(s.ctx, ids[0], code), "restarting a waiting session is a no-op")
	s.Empty(s.transport.OfType(conn(ids[0]), model.EventSessionRestarted))

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	s.ErrorIs(s.controller.Restart(s.ctx, ids[0], code), model.ErrNotFinished)

	s.Require().NoError(s.controller.End(s.ctx, ids[0], code))
	s.ErrorIs(s.controller.Restart(s.ctx, ids[1], code), model.ErrNotHost)
	s.Require().NoError(s.controller.Restart(s.ctx, ids[0], code))

	session := s.find(code)
	s.Equal(model.StatusWaiting, session.Status)
	s.Empty(session.SecretWord)
	s.Empty(session.SecretHint)
	s.Empty(session.Roles)
	s.Zero(session.EffectiveSpyCount)
	s.Equal(ids, session.Members)

	restarted := s.transport.OfType(conn(ids[2]), model.EventSessionRestarted)
	s.Require().Len(restarted, 1)
	s.Equal(model.StatusWaiting, restarted[0].Payload.(model.SessionRestartedPayload).Status)

	// A new round can be started
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
}

// Spy count

func (s *ControllerSuite) TestSetSpyCount() {
	code, ids := s.sessionWith(4, 1)

	_, err := s.controller.SetSpyCount(s.ctx, ids[1], code, 2)
	s.ErrorIs(err, model.ErrNotHost)

	session, err := s.controller.SetSpyCount(s.ctx, ids[0], code, 5)
	s.Require().NoError(err)
	s.Equal(5, session.SpyCount)

	changed := s.transport.OfType(conn(ids[3]), model.EventSpyCountChanged)
	s.Require().Len(changed, 1)
	s.Equal(model.SpyCountChangedPayload{SpyCount: 5, EffectiveSpyCount: 2}, changed[0].Payload)

	session, err = s.controller.SetSpyCount(s.ctx, ids[0], code, 42)
	s.Require().NoError(err)
	s.Equal(model.DefaultSpyCount, session.SpyCount)

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	_, err = s.controller.SetSpyCount(s.ctx, ids[0], code, 2)
	s.ErrorIs(err, model.ErrNotWaiting)
}

// Leave

func (s *ControllerSuite) TestHostLeaveFinishesSession() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	s.Require().NoError(s.controller.Leave(s.ctx, ids[0], code))

	session := s.find(code)
	s.Equal(model.StatusFinished, session.Status)
	s.Empty(session.HostID)
	s.Equal(ids[1:], session.Members)
	s.Empty(s.seatOf(ids[0]))
	s.Equal(0, s.scheduler.Pending())

	for _, id := range ids[1:] {
		left := s.transport.OfType(conn(id), model.EventHostLeft)
		s.Require().Len(left, 1)
		s.Equal(model.HostLeftPayload{Status: model.StatusFinished, Message: HostLeftMessage}, left[0].Payload)
	}
	s.Empty(s.transport.OfType(conn(ids[0]), model.EventHostLeft))

	s.ErrorIs(s.controller.Restart(s.ctx, ids[1], code), model.ErrNotHost)
}

func (s *ControllerSuite) TestMemberLeaveDuringRound() {
	code, ids := s.sessionWith(4, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	s.Require().NoError(s.controller.Leave(s.ctx, ids[3], code))

	session := s.find(code)
	s.Equal(model.StatusPlaying, session.Status)
	s.Equal(ids[:3], session.Members)
	s.Len(session.Roles, 3)
	s.NotContains(session.Roles, ids[3])

	left := s.transport.OfType(conn(ids[1]), model.EventMemberLeft)
	s.Require().Len(left, 1)
	payload := left[0].Payload.(model.MemberLeftPayload)
	s.Equal(ids[3], payload.PlayerID)
	s.Len(payload.Members, 3)
}

func (s *ControllerSuite) TestLeaveNotMember() {
	code, _ := s.sessionWith(2, 1)
	stranger := s.createPlayer("Stranger")

	s.ErrorIs(s.controller.Leave(s.ctx, stranger, code), model.ErrNotInSession)
}

func (s *ControllerSuite) TestLastLeaveDestroysSession() {
	code, ids := s.sessionWith(2, 1)

	s.Require().NoError(s.controller.Leave(s.ctx, ids[1], code))
	s.Require().NoError(s.controller.Leave(s.ctx, ids[0], code))

	_, err := s.controller.Join(s.ctx, ids[0], code)
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Contains(s.mirror.DeletedSessions(), code)
}

func (s *ControllerSuite) TestConnectionLostActsAsLeave() {
	code, ids := s.sessionWith(3, 1)

	s.Require().NoError(s.controller.ConnectionLost(s.ctx, ids[0]))

	session := s.find(code)
	s.Equal(model.StatusFinished, session.Status)
	s.Len(s.transport.OfType(conn(ids[1]), model.EventHostLeft), 1)

	// Losing a connection outside any session does nothing
	s.Require().NoError(s.controller.ConnectionLost(s.ctx, ids[0]))
}

// Reconnection

func (s *ControllerSuite) TestReconnectRedeliversSameRole() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))
	original := s.roleEvents(ids[1])[0]
	joinedBefore := len(s.transport.OfType(conn(ids[0]), model.EventMemberJoined))

	s.binder.Unbind(conn(ids[1]))
	s.binder.Bind("conn-new", ids[1])

	result, err := s.controller.Join(s.ctx, ids[1], code)
	s.Require().NoError(err)
	s.True(result.Reconnected)
	s.Len(result.Session.Members, 3)

	events := s.transport.OfType("conn-new", model.EventRoleAssigned)
	s.Require().Len(events, 1)
	s.Equal(original, events[0].Payload.(model.RoleInfo))
	s.Len(s.transport.OfType(conn(ids[0]), model.EventMemberJoined), joinedBefore)
}

func (s *ControllerSuite) TestReconnectWhileWaitingSendsNoRole() {
	code, ids := s.sessionWith(2, 1)

	result, err := s.controller.Join(s.ctx, ids[1], code)
	s.Require().NoError(err)
	s.True(result.Reconnected)
	s.Equal(ids, s.find(code).Members)
	s.Empty(s.roleEvents(ids[1]))
}

func (s *ControllerSuite) TestReconnectRegeneratesMissingHint() {
	code, ids := s.sessionWith(3, 1)
	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	stored := s.find(code)
	stored.SecretHint = ""
	s.Require().NoError(s.storage.SaveSession(s.ctx, stored))

	var spy model.PlayerID
	for id, role := range stored.Roles {
		if role == model.RoleSpy {
			spy = id
		}
	}

	_, err := s.controller.Join(s.ctx, spy, code)
	s.Require().NoError(err)

	after := s.find(code)
	s.Equal("Lighthouse", after.SecretWord)
	s.Contains(testWords[0].Hints, after.SecretHint)
	s.Equal(stored.Roles, after.Roles)

	infos := s.roleEvents(spy)
	last := infos[len(infos)-1]
	s.Nil(last.Word)
	s.Require().NotNil(last.Hint)
	s.Equal(after.SecretHint, *last.Hint)
}

func (s *ControllerSuite) TestRoleInfo() {
	code, ids := s.sessionWith(3, 1)

	_, err := s.controller.RoleInfo(s.ctx, ids[1])
	s.ErrorIs(err, model.ErrNotPlaying)

	s.Require().NoError(s.controller.Start(s.ctx, ids[0], code))

	for _, id := range ids {
		info, err := s.controller.RoleInfo(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(s.roleEvents(id)[0], *info)
	}

	outsider := s.createPlayer("Outsider")
	_, err = s.controller.RoleInfo(s.ctx, outsider)
	s.ErrorIs(err, model.ErrNotInSession)
}

// Rollback

func (s *ControllerSuite) TestAbortCreate() {
	code, ids := s.sessionWith(2, 1)

	s.Require().NoError(s.controller.AbortCreate(s.ctx, code))

	_, err := s.controller.Registry().Find(s.ctx, code)
	s.ErrorIs(err, model.ErrSessionNotFound)
	for _, id := range ids {
		s.Empty(s.seatOf(id))
	}
	s.Len(s.transport.OfType(conn(ids[1]), model.EventHostLeft), 1)

	s.Require().NoError(s.controller.AbortCreate(s.ctx, code), "aborting twice is harmless")
}
