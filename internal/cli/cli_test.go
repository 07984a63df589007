package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spyword/internal/factory"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/protocol"
	"github.com/mcoot/spyword/internal/services/auth"
)

func newServer(t *testing.T, cfg factory.Config) (*factory.TestApp, string) {
	t.Helper()
	app := factory.NewTestApp(t, cfg)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return app, srv.URL
}

// runCLI executes the root command and returns what it printed
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestEventChannelURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws", false},
		{"https://spy.example/", "wss://spy.example/ws", false},
		{"https://spy.example/game", "wss://spy.example/game/ws", false},
		{"ws://localhost:8080", "ws://localhost:8080/ws", false},
		{"ftp://localhost", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := eventChannelURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnRequestsAndEvents(t *testing.T) {
	app, url := newServer(t, factory.Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host, err := Dial(ctx, url)
	require.NoError(t, err)
	defer func() { _ = host.Close() }()

	guest, err := Dial(ctx, url)
	require.NoError(t, err)
	defer func() { _ = guest.Close() }()

	// Requests before registering are refused with the server's code
	err = host.Request(ctx, protocol.TypeCreateSession, protocol.CreateSessionRequest{}, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, protocol.CodeUnauthorized, reqErr.Code)

	require.NoError(t, host.Request(ctx, protocol.TypeRegister, protocol.RegisterRequest{Name: "Alice"}, nil))
	require.NoError(t, guest.Request(ctx, protocol.TypeRegister, protocol.RegisterRequest{Name: "Bob"}, nil))

	app.MockRandom.QueueString("ABC234")
	var created protocol.CreateSessionResponse
	require.NoError(t, host.Request(ctx, protocol.TypeCreateSession, protocol.CreateSessionRequest{}, &created))
	assert.Equal(t, model.SessionCode("ABC234"), created.SessionID)

	var joined protocol.JoinSessionResponse
	require.NoError(t, guest.Request(ctx, protocol.TypeJoinSession, protocol.SessionRequest{SessionID: "abc234"}, &joined))
	assert.Len(t, joined.Members, 2)

	select {
	case frame := <-host.Events():
		assert.Equal(t, string(model.EventMemberJoined), frame.Type)
	case <-ctx.Done():
		t.Fatal("no memberJoined event")
	}
}

func TestConnClosedRequestFails(t *testing.T) {
	_, url := newServer(t, factory.Config{})
	ctx := context.Background()

	conn, err := Dial(ctx, url)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	<-conn.Done()

	assert.ErrorIs(t, conn.Request(ctx, protocol.TypePing, struct{}{}, nil), ErrConnClosed)
}

func TestHealthCommand(t *testing.T) {
	_, url := newServer(t, factory.Config{})

	out, err := runCLI(t, "--server", url, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: ok")
}

func TestSessionGetCommand(t *testing.T) {
	_, url := newServer(t, factory.Config{})

	out, err := runCLI(t, "--server", url, "session", "get", "ZZZ999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.NotContains(t, out, "Session:")
}

func TestAdminSettingsCommand(t *testing.T) {
	hash, err := auth.HashSecret("open-sesame")
	require.NoError(t, err)
	app, url := newServer(t, factory.Config{AdminSecretHash: hash})

	_, err = runCLI(t, "--server", url, "admin", "settings")
	require.Error(t, err)

	out, err := runCLI(t, "--server", url, "--admin-secret", "open-sesame", "admin", "settings", "--min-players", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Min players to start: 4")
	assert.Equal(t, 4, app.Settings.MinPlayersToStart())
	assert.False(t, app.Settings.ShowHintToRegulars())
}

func TestPlayCreatesSessionAndRunsCommands(t *testing.T) {
	app, url := newServer(t, factory.Config{})
	app.MockRandom.QueueString("ABC234")

	cfg = DefaultConfig()
	cfg.ServerURL = url
	cfg.IDFile = filepath.Join(t.TempDir(), "player")

	var buf bytes.Buffer
	input := strings.NewReader("help\nspies 2\nbogus\nquit\n")
	err := play(context.Background(), input, NewOutput(&buf, "text"), playOptions{Name: "Alice", Create: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Created session ABC234")
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "Spies: 2 (effective 1)")
	assert.Contains(t, out, `unknown command "bogus"`)

	id, err := cfg.LoadPlayerID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestPlayRequiresExactlyOneMode(t *testing.T) {
	_, err := runCLI(t, "play", "--name", "Alice")
	require.Error(t, err)

	_, err = runCLI(t, "play", "--name", "Alice", "--create", "--join", "ABC234")
	require.Error(t, err)
}

func TestPrintEventSkipsOtherPlayersRoleUpdates(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, "text")

	word := "Lighthouse"
	frame, err := protocol.EventFrame(model.Event{
		Type: model.EventRoleUpdate,
		Payload: model.RoleUpdatePayload{
			PlayerID: "someone-else",
			RoleInfo: model.RoleInfo{Role: model.RoleRegular, Word: &word},
		},
	})
	require.NoError(t, err)

	out.PrintEvent(*frame, "me")
	assert.Empty(t, buf.String())

	out.PrintEvent(*frame, "someone-else")
	assert.Contains(t, buf.String(), "Word: Lighthouse")
}
