package draw

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/teamdraw/teamdraw-go/internal/dependencies/clock"
	"github.com/teamdraw/teamdraw-go/internal/dependencies/random"
	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/services/registry"
)

const (
	// minFullTurns guarantees a visibly long spin before the wheel settles
	minFullTurns = 5

	// pointerOffsetDegrees accounts for the indicator sitting at the top of
	// the wheel while segment 0 starts at the 3 o'clock position. The offset
	// and the subtraction direction in winningIndex form one convention;
	// renderers that draw segments clockwise from 3 o'clock with a top
	// pointer land exactly on the computed winner.
	pointerOffsetDegrees = 90.0

	// DefaultRevealDuration is how long the wheel animation runs before a
	// decision on the selection is accepted
	DefaultRevealDuration = 5 * time.Second
)

// State is the engine's draw-session state
type State string

const (
	// StateIdle means no selection is pending and a spin may be triggered
	StateIdle State = "idle"

	// StateSpinning means a selection has been computed but is still being
	// revealed; no spin or decision is accepted until the reveal completes
	StateSpinning State = "spinning"

	// StateAwaitingDecision means a participant is held pending an explicit
	// admin decision
	StateAwaitingDecision State = "awaiting_decision"
)

// Selection is the outcome of one spin
type Selection struct {
	Participant model.Participant

	// Index is the winning segment index in the spin pool
	Index int

	// PoolSize is the number of segments on the wheel for this spin
	PoolSize int

	// TotalRotation is the wheel's cumulative rotation in degrees after this
	// spin; renderers animate to exactly this angle so the pointer lands on
	// the computed winner
	TotalRotation float64

	// RevealDuration is how long the reveal animation should run
	RevealDuration time.Duration
}

// Engine selects one winner uniformly at random from the active pool and
// applies exactly one status transition per confirmed draw through the
// registry authority. It holds no registry lock while a reveal is running;
// Decide re-validates the selection against the live registry instead.
type Engine struct {
	mu sync.Mutex

	registry *registry.Service
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	revealDuration time.Duration

	// rotation is the wheel's cumulative rotation across spins
	rotation float64
	selected *model.Participant
	revealAt time.Time

	// processed holds ids already decided this round
	processed map[model.ParticipantID]struct{}
}

// NewEngine creates a draw engine over the given registry.
// A revealDuration of zero selects DefaultRevealDuration.
func NewEngine(
	reg *registry.Service,
	clock clock.Clock,
	random random.Random,
	revealDuration time.Duration,
	logger *slog.Logger,
) *Engine {
	if revealDuration <= 0 {
		revealDuration = DefaultRevealDuration
	}
	return &Engine{
		registry:       reg,
		clock:          clock,
		random:         random,
		logger:         logger.With(slog.String("component", "draw")),
		revealDuration: revealDuration,
		processed:      make(map[model.ParticipantID]struct{}),
	}
}

// Spin computes the next selection from the current active pool.
// The winning index is computed immediately and deterministically from the
// drawn rotation; the reveal window only delays when Decide is accepted.
func (e *Engine) Spin(ctx context.Context) (*Selection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected != nil {
		if e.clock.Now().Before(e.revealAt) {
			return nil, model.ErrSpinInProgress
		}
		return nil, model.ErrDecisionPending
	}

	snapshot, err := e.registry.List(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("spin", err)
	}

	active := snapshot.Active()
	if len(active) == 0 {
		return nil, model.ErrEmptyPool
	}

	pool := make([]model.Participant, 0, len(active))
	for _, p := range active {
		if _, done := e.processed[p.ID]; !done {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return nil, model.ErrRoundExhausted
	}

	// Uniform offset in [0, 360) plus full turns; the offset alone decides
	// the winner, so each segment has probability 1/N
	e.rotation += 360*minFullTurns + e.random.Float64()*360

	index := winningIndex(e.rotation, len(pool))
	selected := pool[index]

	e.selected = &selected
	e.revealAt = e.clock.Now().Add(e.revealDuration)

	e.logger.Info("spin completed",
		slog.String("participant_id", string(selected.ID)),
		slog.Int("index", index),
		slog.Int("pool_size", len(pool)),
	)

	return &Selection{
		Participant:    selected,
		Index:          index,
		PoolSize:       len(pool),
		TotalRotation:  e.rotation,
		RevealDuration: e.revealDuration,
	}, nil
}

// Decide applies the admin's decision for the pending selection.
// Only winner and discarded are valid decisions. If the selected participant
// was deleted or changed status while the selection was pending, the stale
// selection is discarded and the engine returns to idle without retry.
// Backend failures keep the selection so the decision can be retried.
func (e *Engine) Decide(ctx context.Context, decision model.Status) (*model.Participant, error) {
	if decision != model.StatusWinner && decision != model.StatusDiscarded {
		return nil, model.ErrInvalidStatus
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected == nil {
		return nil, model.ErrNoSelection
	}
	if e.clock.Now().Before(e.revealAt) {
		return nil, model.ErrSpinInProgress
	}

	current, err := e.registry.Get(ctx, e.selected.ID)
	if err != nil && !errors.Is(err, model.ErrParticipantNotFound) {
		// Hard failure: keep the selection so the admin can retry the decision
		return nil, model.NewPersistenceError("revalidate selection", err)
	}
	if err != nil || current.Status != model.StatusActive {
		e.logger.Warn("stale selection discarded",
			slog.String("participant_id", string(e.selected.ID)))
		e.selected = nil
		return nil, model.ErrStaleSelection
	}

	if err := e.registry.UpdateStatus(ctx, e.selected.ID, decision); err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			e.selected = nil
			return nil, model.ErrStaleSelection
		}
		// Hard failure: keep the selection so the admin can retry the decision
		return nil, err
	}

	decided := *e.selected
	decided.Status = decision
	e.processed[decided.ID] = struct{}{}
	e.selected = nil

	e.logger.Info("decision applied",
		slog.String("participant_id", string(decided.ID)),
		slog.String("decision", string(decision)),
	)

	return &decided, nil
}

// ResetRound reactivates every participant and clears the engine's
// processed-this-round tracking, restoring the full original pool.
// Returns the number of participants reactivated.
func (e *Engine) ResetRound(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected != nil {
		if e.clock.Now().Before(e.revealAt) {
			return 0, model.ErrSpinInProgress
		}
		return 0, model.ErrDecisionPending
	}

	count, err := e.registry.ResetGame(ctx)
	if err != nil {
		return 0, err
	}

	e.processed = make(map[model.ParticipantID]struct{})
	e.rotation = 0

	e.logger.Info("round reset", slog.Int("reactivated", count))
	return count, nil
}

// Status describes the engine's current session for observers
type Status struct {
	State    State
	Selected *model.Participant

	// ProcessedThisRound is the number of selections decided since the last
	// round reset
	ProcessedThisRound int
}

// Status reports the current draw-session state
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{State: StateIdle, ProcessedThisRound: len(e.processed)}
	if e.selected != nil {
		selected := *e.selected
		st.Selected = &selected
		if e.clock.Now().Before(e.revealAt) {
			st.State = StateSpinning
		} else {
			st.State = StateAwaitingDecision
		}
	}
	return st
}

// winningIndex maps a cumulative rotation to the segment under the pointer.
// Each of the n participants occupies an equal 360/n degree segment; the
// pointer offset and the (360 - normalized) direction must stay paired with
// pointerOffsetDegrees for the visual wheel and the computed index to agree.
func winningIndex(rotation float64, n int) int {
	normalized := math.Mod(rotation+pointerOffsetDegrees, 360)
	segment := 360 / float64(n)
	return int(math.Floor((360-normalized)/segment)) % n
}
