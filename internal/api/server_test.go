package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spyword/internal/api"
	"github.com/mcoot/spyword/internal/testutil"
)

func TestServerShutdownRunsHooks(t *testing.T) {
	server := api.NewServer(http.NotFoundHandler(), api.DefaultServerConfig(), testutil.NopLogger())

	closed := make(chan struct{})
	server.OnShutdown(func() { close(closed) })

	require.NoError(t, server.Shutdown(context.Background()))

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("shutdown hook did not run")
	}
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := api.DefaultServerConfig()

	assert.Equal(t, 8080, cfg.Port)
	assert.Positive(t, cfg.ReadHeaderTimeout)
	assert.Equal(t, ":8080", api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger()).Addr())
}
