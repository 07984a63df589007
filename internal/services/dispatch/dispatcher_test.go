package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/services/binding"
	"github.com/mcoot/spyword/internal/testutil"
)

func newSession(members ...model.PlayerID) *model.Session {
	return &model.Session{Code: "ABC234", HostID: members[0], Members: members}
}

func roleInfo(word string) model.RoleInfo {
	return model.RoleInfo{Role: model.RoleRegular, Word: &word}
}

func TestBroadcastReachesBoundMembersOnly(t *testing.T) {
	transport := testutil.NewRecordingTransport()
	binder := binding.New()
	binder.Bind("c-alice", "alice")
	binder.Bind("c-bob", "bob")
	d := New(transport, binder, DefaultConfig(), testutil.NopLogger())

	d.BroadcastToSession(newSession("alice", "bob", "carol"), model.EventSessionStarted, model.SessionStartedPayload{})

	assert.Len(t, transport.EventsFor("c-alice"), 1)
	assert.Len(t, transport.EventsFor("c-bob"), 1)
	assert.Equal(t, 2, transport.Total())
}

func TestSendToBoundPlayer(t *testing.T) {
	transport := testutil.NewRecordingTransport()
	binder := binding.New()
	binder.Bind("c-alice", "alice")
	d := New(transport, binder, DefaultConfig(), testutil.NopLogger())

	d.SendToPlayer(newSession("alice", "bob"), "alice", model.EventRoleAssigned, roleInfo("Lighthouse"))

	events := transport.EventsFor("c-alice")
	require.Len(t, events, 1)
	assert.Equal(t, model.EventRoleAssigned, events[0].Type)
	assert.Equal(t, 0, d.Pending("alice"))
}

func TestQueueFallbackHoldsUntilRebind(t *testing.T) {
	transport := testutil.NewRecordingTransport()
	binder := binding.New()
	binder.Bind("c-alice", "alice")
	d := New(transport, binder, DefaultConfig(), testutil.NopLogger())
	session := newSession("alice", "bob")

	d.SendToPlayer(session, "bob", model.EventRoleAssigned, roleInfo("one"))
	d.SendToPlayer(session, "bob", model.EventRoleAssigned, roleInfo("two"))

	assert.Equal(t, 0, transport.Total(), "nothing leaks to other members")
	assert.Equal(t, 2, d.Pending("bob"))

	binder.Bind("c-bob", "bob")
	assert.Equal(t, 2, d.Flush("bob"))

	events := transport.EventsFor("c-bob")
	require.Len(t, events, 2)
	assert.Equal(t, "one", *events[0].Payload.(model.RoleInfo).Word)
	assert.Equal(t, "two", *events[1].Payload.(model.RoleInfo).Word)
	assert.Equal(t, 0, d.Pending("bob"))
}

func TestQueueFallbackIsBounded(t *testing.T) {
	transport := testutil.NewRecordingTransport()
	d := New(transport, binding.New(), Config{Fallback: FallbackQueue, QueueLimit: 2}, testutil.NopLogger())
	session := newSession("alice")

	d.SendToPlayer(session, "alice", model.EventRoleAssigned, roleInfo("one"))
	d.SendToPlayer(session, "alice", model.EventRoleAssigned, roleInfo("two"))
	d.SendToPlayer(session, "alice", model.EventRoleAssigned, roleInfo("three"))

	assert.Equal(t, 2, d.Pending("alice"))

	d.Discard("alice")
	assert.Equal(t, 0, d.Pending("alice"))
}

func TestQueueFallbackWhenSendFails(t *testing.T) {
	transport := testutil.NewRecordingTransport()
	transport.Reject("c-alice")
	binder := binding.New()
	binder.Bind("c-alice", "alice")
	d := New(transport, binder, DefaultConfig(), testutil.NopLogger())

	d.SendToPlayer(newSession("alice"), "alice", model.EventRoleAssigned, roleInfo("one"))
	assert.Equal(t, 1, d.Pending("alice"))

	assert.Equal(t, 0, d.Flush("alice"))
	assert.Equal(t, 1, d.Pending("alice"))
}

func TestBroadcastFallbackTagsAddressee(t *testing.T) {
	transport := testutil.NewRecordingTransport()
	binder := binding.New()
	binder.Bind("c-alice", "alice")
	d := New(transport, binder, Config{Fallback: FallbackBroadcast}, testutil.NopLogger())

	d.SendToPlayer(newSession("alice", "bob"), "bob", model.EventRoleAssigned, roleInfo("Lighthouse"))

	events := transport.EventsFor("c-alice")
	require.Len(t, events, 1)
	assert.Equal(t, model.EventRoleUpdate, events[0].Type)
	update := events[0].Payload.(model.RoleUpdatePayload)
	assert.Equal(t, model.PlayerID("bob"), update.PlayerID)
	assert.Equal(t, "Lighthouse", *update.Word)
	assert.Equal(t, 0, d.Pending("bob"))
}

func TestParseFallbackMode(t *testing.T) {
	mode, err := ParseFallbackMode("")
	require.NoError(t, err)
	assert.Equal(t, FallbackQueue, mode)

	mode, err = ParseFallbackMode("broadcast")
	require.NoError(t, err)
	assert.Equal(t, FallbackBroadcast, mode)

	_, err = ParseFallbackMode("carrier-pigeon")
	assert.Error(t, err)
}
