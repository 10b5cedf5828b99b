package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/teamdraw/teamdraw-go/internal/dependencies/clock"
	"github.com/teamdraw/teamdraw-go/internal/dependencies/random"
	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/notifier"
	"github.com/teamdraw/teamdraw-go/internal/storage"
)

const (
	idLength   = 12
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Service is the registry authority: the single writer over the participant
// store. Every mutating command is serialized through one mutex, persisted,
// and followed by exactly one change event carrying the full new snapshot.
// Reads are served directly from the store without taking the write lock.
type Service struct {
	// mu serializes mutating commands (FIFO by lock acquisition).
	// Publishing inside the critical section keeps event order equal to
	// commit order for every subscriber.
	mu sync.Mutex

	store    storage.Store
	notifier *notifier.Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// NewService creates a registry authority over the given store
func NewService(
	store storage.Store,
	notif *notifier.Notifier,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		notifier: notif,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "registry")),
	}
}

// Register creates a new active participant.
// The username must be non-empty after trimming and unique under
// case-insensitive comparison; the team must be one of the three known teams.
func (s *Service) Register(ctx context.Context, username, team string) (*model.Participant, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, model.ErrEmptyUsername
	}

	t, err := model.ParseTeam(team)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &model.Participant{
		ID:           model.ParticipantID(s.random.String(idLength, idAlphabet)),
		Username:     trimmed,
		Team:         t,
		Status:       model.StatusActive,
		RegisteredAt: s.clock.Now(),
	}

	if err := s.store.InsertParticipant(ctx, p); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, model.NewPersistenceError("register", err)
	}

	s.logger.Info("participant registered",
		slog.String("participant_id", string(p.ID)),
		slog.String("team", string(p.Team)),
	)

	s.publish(ctx, model.ChangeRegistered)
	return p, nil
}

// Delete removes a participant. Admin capability is the caller's concern.
func (s *Service) Delete(ctx context.Context, id model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteParticipant(ctx, id); err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return err
		}
		return model.NewPersistenceError("delete", err)
	}

	s.logger.Info("participant deleted", slog.String("participant_id", string(id)))

	s.publish(ctx, model.ChangeDeleted)
	return nil
}

// UpdateStatus overwrites a participant's status. Any status is reachable
// from any status; meaningful sequencing is the draw engine's concern.
func (s *Service) UpdateStatus(ctx context.Context, id model.ParticipantID, status model.Status) error {
	if _, err := model.ParseStatus(string(status)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return err
		}
		return model.NewPersistenceError("update status", err)
	}

	s.logger.Info("participant status updated",
		slog.String("participant_id", string(id)),
		slog.String("status", string(status)),
	)

	s.publish(ctx, model.ChangeStatusUpdated)
	return nil
}

// ResetGame returns every participant to active and reports how many were
// reactivated. Admin capability is the caller's concern.
func (s *Service) ResetGame(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.ReactivateAll(ctx)
	if err != nil {
		return 0, model.NewPersistenceError("reset game", err)
	}

	s.logger.Info("game reset", slog.Int("reactivated", count))

	s.publish(ctx, model.ChangeGameReset)
	return count, nil
}

// ClearAll deletes every participant. Destructive and irreversible; intent
// confirmation is the caller's concern.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteAll(ctx); err != nil {
		return model.NewPersistenceError("clear all", err)
	}

	s.logger.Info("registry cleared")

	s.publish(ctx, model.ChangeCleared)
	return nil
}

// List returns the ordered snapshot of all participants
func (s *Service) List(ctx context.Context) (model.Snapshot, error) {
	return s.store.ListParticipants(ctx)
}

// Get retrieves a single participant by id
func (s *Service) Get(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return s.store.GetParticipant(ctx, id)
}

// publish emits one change event with the post-mutation snapshot.
// The mutation has already committed; a snapshot read failure here only
// costs the notification, so it is logged rather than surfaced.
func (s *Service) publish(ctx context.Context, kind model.ChangeKind) {
	snapshot, err := s.store.ListParticipants(ctx)
	if err != nil {
		s.logger.Error("failed to read snapshot for change event",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return
	}

	s.notifier.Publish(model.ChangeEvent{
		Kind:      kind,
		Timestamp: s.clock.Now(),
		Snapshot:  snapshot,
	})
}
