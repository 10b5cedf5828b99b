package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) InsertParticipant(ctx context.Context, p *model.Participant) error {
	// The registry serializes mutations, so check-then-insert is race-free
	_, err := s.client.Get(ctx, usernameKey(p.Username)).Result()
	if err == nil {
		return model.ErrDuplicateUsername
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, participantKey(p.ID), data, 0)
	pipe.Set(ctx, usernameKey(p.Username), string(p.ID), 0)
	pipe.ZAdd(ctx, orderKey, redis.Z{
		Score:  float64(p.RegisteredAt.UnixMilli()),
		Member: string(p.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error) {
	idStr, err := s.client.Get(ctx, usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	return s.GetParticipant(ctx, model.ParticipantID(idStr))
}

func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) error {
	p, err := s.GetParticipant(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, participantKey(id))
	pipe.Del(ctx, usernameKey(p.Username))
	pipe.ZRem(ctx, orderKey, string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SetStatus(ctx context.Context, id model.ParticipantID, status model.Status) error {
	p, err := s.GetParticipant(ctx, id)
	if err != nil {
		return err
	}

	p.Status = status
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, participantKey(id), data, 0).Err()
}

func (s *Storage) ReactivateAll(ctx context.Context) (int, error) {
	snapshot, err := s.ListParticipants(ctx)
	if err != nil {
		return 0, err
	}

	pipe := s.client.Pipeline()
	count := 0
	for _, p := range snapshot {
		if p.Status == model.StatusActive {
			continue
		}
		p.Status = model.StatusActive
		data, err := json.Marshal(p)
		if err != nil {
			return 0, err
		}
		pipe.Set(ctx, participantKey(p.ID), data, 0)
		count++
	}
	if count == 0 {
		return 0, nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Storage) DeleteAll(ctx context.Context) error {
	snapshot, err := s.ListParticipants(ctx)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, p := range snapshot {
		pipe.Del(ctx, participantKey(p.ID))
		pipe.Del(ctx, usernameKey(p.Username))
	}
	pipe.Del(ctx, orderKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListParticipants(ctx context.Context) (model.Snapshot, error) {
	ids, err := s.client.ZRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return model.Snapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = participantKey(model.ParticipantID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	snapshot := make(model.Snapshot, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Index entry without a record; skip
			continue
		}
		var p model.Participant
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		snapshot = append(snapshot, p)
	}
	return snapshot, nil
}
