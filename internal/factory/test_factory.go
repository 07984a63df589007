package factory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mcoot/spyword/internal/dependencies/mocks"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
	"github.com/mcoot/spyword/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestWords is the word list every TestApp starts with
var TestWords = []model.WordEntry{
	{Word: "Lighthouse", Hints: []string{"Coast"}},
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The engine loop runs until the test finishes.
func NewTestApp(t testing.TB, cfg Config) *TestApp {
	t.Helper()

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app, err := newWithDependencies(store, persistence.Nop{}, mockClock, mockRandom, cfg, logger)
	if err != nil {
		t.Fatalf("build test app: %v", err)
	}
	if _, err := app.Words.Replace(context.Background(), TestWords); err != nil {
		t.Fatalf("load test words: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go app.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-app.Engine.Loop().Done()
		app.Close()
	})

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
