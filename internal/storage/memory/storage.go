package memory

import (
	"context"
	"sync"

	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	participants  map[model.ParticipantID]*model.Participant
	usernameIndex map[string]model.ParticipantID
	// order holds ids in insertion order, which equals registration-time
	// order because the registry serializes inserts
	order []model.ParticipantID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants:  make(map[model.ParticipantID]*model.Participant),
		usernameIndex: make(map[string]model.ParticipantID),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) InsertParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.NormalizeUsername(p.Username)
	if _, exists := s.usernameIndex[key]; exists {
		return model.ErrDuplicateUsername
	}

	stored := *p
	s.participants[p.ID] = &stored
	s.usernameIndex[key] = p.ID
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *Storage) GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernameIndex[model.NormalizeUsername(username)]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return model.ErrParticipantNotFound
	}

	delete(s.participants, id)
	delete(s.usernameIndex, model.NormalizeUsername(p.Username))
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) SetStatus(ctx context.Context, id model.ParticipantID, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return model.ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (s *Storage) ReactivateAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.participants {
		if p.Status != model.StatusActive {
			p.Status = model.StatusActive
			count++
		}
	}
	return count, nil
}

func (s *Storage) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = make(map[model.ParticipantID]*model.Participant)
	s.usernameIndex = make(map[string]model.ParticipantID)
	s.order = nil
	return nil
}

func (s *Storage) ListParticipants(ctx context.Context) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(model.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.participants[id]; ok {
			snapshot = append(snapshot, *p)
		}
	}
	return snapshot, nil
}
