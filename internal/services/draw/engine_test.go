package draw

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/teamdraw/teamdraw-go/internal/dependencies/mocks"
	"github.com/teamdraw/teamdraw-go/internal/dependencies/random"
	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/notifier"
	"github.com/teamdraw/teamdraw-go/internal/services/registry"
	"github.com/teamdraw/teamdraw-go/internal/storage"
	"github.com/teamdraw/teamdraw-go/internal/storage/memory"
	"github.com/teamdraw/teamdraw-go/internal/testutil"
)

func TestWinningIndex(t *testing.T) {
	tests := []struct {
		name     string
		rotation float64
		n        int
		want     int
	}{
		{"four segments, no offset", 1800, 4, 3},
		{"four segments, quarter turn", 1800 + 90, 4, 2},
		{"four segments, half turn", 1800 + 180, 4, 1},
		{"four segments, three quarters", 1800 + 270, 4, 0},
		{"three segments, no offset", 1800, 3, 2},
		{"three segments, half turn", 1800 + 180, 3, 0},
		{"single segment", 1800 + 123, 1, 0},
		{"single segment, no offset", 1800, 1, 0},
		{"pointer exactly on boundary", 1800 + 270, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, winningIndex(tt.rotation, tt.n))
		})
	}
}

// TestWinningIndexUniformity checks that with uniform random offsets every
// segment is selected with roughly equal frequency, independent of the
// accumulated rotation.
func TestWinningIndexUniformity(t *testing.T) {
	const (
		poolSize = 4
		trials   = 10000
	)

	rnd := random.New()
	counts := make([]int, poolSize)
	rotation := 0.0
	for i := 0; i < trials; i++ {
		rotation += 360*minFullTurns + rnd.Float64()*360
		counts[winningIndex(rotation, poolSize)]++
	}

	// Expected 2500 per segment; allow a generous band well beyond
	// statistical noise
	for i, c := range counts {
		assert.Greater(t, c, 2100, "segment %d starved", i)
		assert.Less(t, c, 2900, "segment %d oversampled", i)
	}
}

type EngineSuite struct {
	suite.Suite
	storage  *memory.Storage
	registry *registry.Service
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	engine   *Engine
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = registry.NewService(s.storage, notifier.New(logger), s.clock, s.random, logger)
	s.engine = NewEngine(s.registry, s.clock, s.random, 5*time.Second, logger)
	s.ctx = context.Background()
}

// register adds active participants named and id'd p1..pN in order
func (s *EngineSuite) register(names ...string) {
	for i, name := range names {
		s.random.QueueString("p" + string(rune('1'+i)))
		_, err := s.registry.Register(s.ctx, name, "blue")
		s.Require().NoError(err)
	}
}

func (s *EngineSuite) passReveal() {
	s.clock.Advance(6 * time.Second)
}

func (s *EngineSuite) TestSpinEmptyPool() {
	_, err := s.engine.Spin(s.ctx)
	s.ErrorIs(err, model.ErrEmptyPool)
}

func (s *EngineSuite) TestSpinSelectsByRotation() {
	s.register("Alice", "Bob", "Carol", "Dave")

	// Offset 0 lands the pointer on the last segment
	s.random.QueueFloat64(0.0)

	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, selection.Index)
	s.Equal(4, selection.PoolSize)
	s.Equal("Dave", selection.Participant.Username)
	s.Equal(1800.0, selection.TotalRotation)
	s.Equal(5*time.Second, selection.RevealDuration)
}

func (s *EngineSuite) TestSpinHalfTurn() {
	s.register("Alice", "Bob", "Carol", "Dave")

	s.random.QueueFloat64(0.5)

	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, selection.Index)
	s.Equal("Bob", selection.Participant.Username)
}

func (s *EngineSuite) TestSingleParticipantAlwaysSelected() {
	s.register("Alice")

	s.random.QueueFloat64(0.37)

	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, selection.Index)
	s.Equal(1, selection.PoolSize)
	s.Equal("Alice", selection.Participant.Username)
}

func (s *EngineSuite) TestRotationAccumulatesAcrossSpins() {
	s.register("Alice", "Bob")

	s.random.QueueFloat64(0.5, 0.25)

	first, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(1800+180.0, first.TotalRotation)

	s.passReveal()
	_, err = s.engine.Decide(s.ctx, model.StatusDiscarded)
	s.Require().NoError(err)

	second, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(1800+180+1800+90.0, second.TotalRotation)
}

func (s *EngineSuite) TestSpinDuringRevealRejected() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0, 0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)

	_, err = s.engine.Spin(s.ctx)
	s.ErrorIs(err, model.ErrSpinInProgress)
}

func (s *EngineSuite) TestDecideDuringRevealRejected() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)

	_, err = s.engine.Decide(s.ctx, model.StatusWinner)
	s.ErrorIs(err, model.ErrSpinInProgress)
}

func (s *EngineSuite) TestSpinWhileAwaitingDecisionRejected() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0, 0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	_, err = s.engine.Spin(s.ctx)
	s.ErrorIs(err, model.ErrDecisionPending)
}

func (s *EngineSuite) TestDecideWinner() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0)

	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	decided, err := s.engine.Decide(s.ctx, model.StatusWinner)
	s.Require().NoError(err)
	s.Equal(selection.Participant.ID, decided.ID)
	s.Equal(model.StatusWinner, decided.Status)

	stored, err := s.registry.Get(s.ctx, decided.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusWinner, stored.Status)

	status := s.engine.Status()
	s.Equal(StateIdle, status.State)
	s.Equal(1, status.ProcessedThisRound)
}

func (s *EngineSuite) TestDecideDiscarded() {
	s.register("Alice")
	s.random.QueueFloat64(0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	decided, err := s.engine.Decide(s.ctx, model.StatusDiscarded)
	s.Require().NoError(err)
	s.Equal(model.StatusDiscarded, decided.Status)
}

func (s *EngineSuite) TestDecideInvalidDecision() {
	s.register("Alice")
	s.random.QueueFloat64(0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	_, err = s.engine.Decide(s.ctx, model.StatusActive)
	s.ErrorIs(err, model.ErrInvalidStatus)

	// The selection is still pending
	s.Equal(StateAwaitingDecision, s.engine.Status().State)
}

func (s *EngineSuite) TestDecideWithoutSelection() {
	_, err := s.engine.Decide(s.ctx, model.StatusWinner)
	s.ErrorIs(err, model.ErrNoSelection)
}

func (s *EngineSuite) TestDecideStaleAfterDelete() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0)

	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	// Participant removed while the selection was pending
	s.Require().NoError(s.registry.Delete(s.ctx, selection.Participant.ID))

	_, err = s.engine.Decide(s.ctx, model.StatusWinner)
	s.ErrorIs(err, model.ErrStaleSelection)

	// The stale selection is discarded, not retried
	s.Equal(StateIdle, s.engine.Status().State)
}

// flakyStore fails GetParticipant a set number of times before delegating,
// simulating a transient backend outage.
type flakyStore struct {
	storage.Store
	failGets int
}

func (f *flakyStore) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	if f.failGets > 0 {
		f.failGets--
		return nil, errors.New("backend unavailable")
	}
	return f.Store.GetParticipant(ctx, id)
}

func (s *EngineSuite) TestDecideRetryableAfterTransientGetFailure() {
	logger := testutil.NopLogger()
	store := &flakyStore{Store: memory.New()}
	reg := registry.NewService(store, notifier.New(logger), s.clock, s.random, logger)
	engine := NewEngine(reg, s.clock, s.random, 5*time.Second, logger)

	s.random.QueueString("p1")
	_, err := reg.Register(s.ctx, "Alice", "blue")
	s.Require().NoError(err)

	s.random.QueueFloat64(0.0)
	_, err = engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	// A one-call backend blip must not be mistaken for a stale selection
	store.failGets = 1
	_, err = engine.Decide(s.ctx, model.StatusWinner)
	s.ErrorIs(err, model.ErrPersistence)
	s.Equal(StateAwaitingDecision, engine.Status().State)

	// Backend recovered; the same decision goes through
	decided, err := engine.Decide(s.ctx, model.StatusWinner)
	s.Require().NoError(err)
	s.Equal(model.StatusWinner, decided.Status)
	s.Equal(StateIdle, engine.Status().State)
}

func (s *EngineSuite) TestDecideStaleAfterStatusChange() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0)

	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()

	// Admin discarded the participant out of band
	s.Require().NoError(s.registry.UpdateStatus(s.ctx, selection.Participant.ID, model.StatusDiscarded))

	_, err = s.engine.Decide(s.ctx, model.StatusWinner)
	s.ErrorIs(err, model.ErrStaleSelection)
	s.Equal(StateIdle, s.engine.Status().State)
}

func (s *EngineSuite) TestDecidedParticipantsLeaveThePool() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0, 0.0)

	// First spin with two segments picks Bob
	first, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal("Bob", first.Participant.Username)
	s.passReveal()
	_, err = s.engine.Decide(s.ctx, model.StatusDiscarded)
	s.Require().NoError(err)

	// Second spin only sees Alice
	second, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, second.PoolSize)
	s.Equal("Alice", second.Participant.Username)
}

func (s *EngineSuite) TestAllDecidedMeansEmptyPool() {
	s.register("Alice")
	s.random.QueueFloat64(0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()
	_, err = s.engine.Decide(s.ctx, model.StatusDiscarded)
	s.Require().NoError(err)

	_, err = s.engine.Spin(s.ctx)
	s.ErrorIs(err, model.ErrEmptyPool)
}

func (s *EngineSuite) TestRoundExhaustedAfterManualReactivation() {
	s.register("Alice")
	s.random.QueueFloat64(0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()
	decided, err := s.engine.Decide(s.ctx, model.StatusDiscarded)
	s.Require().NoError(err)

	// Reactivated out of band, but already drawn this round
	s.Require().NoError(s.registry.UpdateStatus(s.ctx, decided.ID, model.StatusActive))

	_, err = s.engine.Spin(s.ctx)
	s.ErrorIs(err, model.ErrRoundExhausted)
}

func (s *EngineSuite) TestResetRound() {
	s.register("Alice", "Bob")
	s.random.QueueFloat64(0.0, 0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.passReveal()
	_, err = s.engine.Decide(s.ctx, model.StatusDiscarded)
	s.Require().NoError(err)

	count, err := s.engine.ResetRound(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	status := s.engine.Status()
	s.Equal(StateIdle, status.State)
	s.Equal(0, status.ProcessedThisRound)

	// The wheel position resets with the round
	selection, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, selection.PoolSize)
	s.Equal(1800.0, selection.TotalRotation)
}

func (s *EngineSuite) TestResetRoundRejectedWhilePending() {
	s.register("Alice")
	s.random.QueueFloat64(0.0)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)

	_, err = s.engine.ResetRound(s.ctx)
	s.ErrorIs(err, model.ErrSpinInProgress)

	s.passReveal()
	_, err = s.engine.ResetRound(s.ctx)
	s.ErrorIs(err, model.ErrDecisionPending)
}

func (s *EngineSuite) TestStatusTransitions() {
	s.register("Alice")
	s.random.QueueFloat64(0.0)

	s.Equal(StateIdle, s.engine.Status().State)

	_, err := s.engine.Spin(s.ctx)
	s.Require().NoError(err)
	status := s.engine.Status()
	s.Equal(StateSpinning, status.State)
	s.Require().NotNil(status.Selected)
	s.Equal("Alice", status.Selected.Username)

	s.passReveal()
	s.Equal(StateAwaitingDecision, s.engine.Status().State)

	_, err = s.engine.Decide(s.ctx, model.StatusWinner)
	s.Require().NoError(err)
	s.Equal(StateIdle, s.engine.Status().State)
}
