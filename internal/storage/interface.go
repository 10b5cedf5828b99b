package storage

import (
	"context"

	"github.com/teamdraw/teamdraw-go/internal/model"
)

// Store defines the interface for participant persistence.
//
// Implementations enforce case-insensitive username uniqueness on insert and
// return listings ordered by registration time ascending (insertion order as
// tie-break). Each operation is atomic within the backend; command-level
// serialization is the registry's responsibility.
type Store interface {
	// InsertParticipant stores a new participant.
	// Returns model.ErrDuplicateUsername if the username is already taken
	// under case-insensitive comparison.
	InsertParticipant(ctx context.Context, p *model.Participant) error

	// GetParticipant retrieves a participant by id
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)

	// GetParticipantByUsername retrieves a participant by case-insensitive username
	GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error)

	// DeleteParticipant removes a participant.
	// Returns model.ErrParticipantNotFound if the id does not exist.
	DeleteParticipant(ctx context.Context, id model.ParticipantID) error

	// SetStatus overwrites a participant's status.
	// Returns model.ErrParticipantNotFound if the id does not exist.
	SetStatus(ctx context.Context, id model.ParticipantID, status model.Status) error

	// ReactivateAll sets every non-active participant back to active and
	// returns the number of participants touched
	ReactivateAll(ctx context.Context) (int, error)

	// DeleteAll removes every participant
	DeleteAll(ctx context.Context) error

	// ListParticipants returns an ordered snapshot of all participants
	ListParticipants(ctx context.Context) (model.Snapshot, error)
}
