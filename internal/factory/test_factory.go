package factory

import (
	"time"

	"github.com/teamdraw/teamdraw-go/internal/dependencies/mocks"
	"github.com/teamdraw/teamdraw-go/internal/storage/memory"
	"github.com/teamdraw/teamdraw-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The draw engine uses its default reveal window; advance MockClock past it
// before deciding on a selection.
func NewTestApp() *TestApp {
	return NewTestAppWithReveal(0)
}

// NewTestAppWithReveal creates a test App with a specific reveal duration
func NewTestAppWithReveal(revealDuration time.Duration) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, revealDuration, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
