package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrStaleRound is returned when a state older than the stored round is saved.
	ErrStaleRound = errors.New("round superseded by a newer round")
	// ErrRoundConflict is returned when the stored state of the same round was saved by another request
	// after this state was loaded.
	ErrRoundConflict = errors.New("round changed by another request")
	// ErrRoundStateNotFound is returned when the user has no stored round.
	ErrRoundStateNotFound = errors.New("round state not found")
	ErrRoundContention    = errors.New("round state changed concurrently")
)

const maxSaveAttempts = 5

// RoundStore persists practice rounds. Save never lets an older round replace a newer one,
// and within one round it only accepts a state carrying the stored Version. A successful Save
// increments state.Version so the caller can save the same state again.
type RoundStore interface {
	Load(ctx context.Context, userID string) (*models.RoundState, error)
	Save(ctx context.Context, state *models.RoundState) error
}

// RoundSequencer hands out per-user round tokens that only ever increase.
type RoundSequencer interface {
	NextRound(ctx context.Context, userID string) (int64, error)
}

func roundKey(userID string) string {
	return "practice:round:" + userID
}

func roundSeqKey(userID string) string {
	return "practice:round_seq:" + userID
}

// checkSave decides whether state may replace stored.
func checkSave(stored, state *models.RoundState) error {
	switch {
	case stored == nil || stored.Round < state.Round:
		return nil
	case stored.Round > state.Round:
		return ErrStaleRound
	case stored.Version != state.Version:
		return ErrRoundConflict
	}
	return nil
}

func decodeStored(data []byte) *models.RoundState {
	var stored models.RoundState
	if json.Unmarshal(data, &stored) != nil {
		return nil
	}
	return &stored
}

type redisRoundStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisRoundStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) RoundStore {
	return &redisRoundStore{client: client, ttl: ttl, logger: logger}
}

func (s *redisRoundStore) Load(ctx context.Context, userID string) (*models.RoundState, error) {
	data, err := s.client.Get(ctx, roundKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoundStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round state: %w", err)
	}

	var state models.RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("Discarding undecodable round state", "user_id", userID, "error", err)
		return nil, ErrRoundStateNotFound
	}
	return &state, nil
}

// Save writes the state under WATCH so a concurrent save of the same key aborts this write.
func (s *redisRoundStore) Save(ctx context.Context, state *models.RoundState) error {
	key := roundKey(state.UserID)
	next := *state
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to encode round state: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		var stored *models.RoundState
		if err == nil {
			stored = decodeStored(current)
		}
		if err := checkSave(stored, state); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			// Keep the round counter alive as long as the state it fences
			if s.ttl > 0 {
				pipe.Expire(ctx, roundSeqKey(state.UserID), 2*s.ttl)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrStaleRound), errors.Is(err, ErrRoundConflict):
			return err
		case err != nil:
			return fmt.Errorf("failed to save round state: %w", err)
		}
		state.Version = next.Version
		return nil
	}
	return ErrRoundContention
}

type redisRoundSequencer struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRoundSequencer(client *redis.Client, ttl time.Duration) RoundSequencer {
	return &redisRoundSequencer{client: client, ttl: ttl}
}

func (s *redisRoundSequencer) NextRound(ctx context.Context, userID string) (int64, error) {
	key := roundSeqKey(userID)
	if err := s.seed(ctx, userID); err != nil {
		return 0, err
	}

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// The counter must outlive the round it fences
		if s.ttl > 0 {
			pipe.Expire(ctx, key, 2*s.ttl)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate round: %w", err)
	}
	return incr.Val(), nil
}

// seed restarts a lost counter from the stored round, so new rounds are never numbered below it.
func (s *redisRoundSequencer) seed(ctx context.Context, userID string) error {
	key := roundSeqKey(userID)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate round: %w", err)
	}
	if n > 0 {
		return nil
	}

	data, err := s.client.Get(ctx, roundKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to allocate round: %w", err)
	}
	stored := decodeStored(data)
	if stored == nil || stored.Round == 0 {
		return nil
	}
	// SETNX: a concurrent NextRound that created the counter first wins
	if err := s.client.SetNX(ctx, key, stored.Round, 2*s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to allocate round: %w", err)
	}
	return nil
}

// MemoryRoundStore keeps rounds in process with the same stale-round check. Tests use it in place of redis.
type MemoryRoundStore struct {
	mu     sync.Mutex
	states map[string][]byte
	seq    map[string]int64
}

func NewMemoryRoundStore() *MemoryRoundStore {
	return &MemoryRoundStore{
		states: make(map[string][]byte),
		seq:    make(map[string]int64),
	}
}

func (m *MemoryRoundStore) Load(ctx context.Context, userID string) (*models.RoundState, error) {
	m.mu.Lock()
	data, ok := m.states[userID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrRoundStateNotFound
	}

	var state models.RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, ErrRoundStateNotFound
	}
	return &state, nil
}

func (m *MemoryRoundStore) Save(ctx context.Context, state *models.RoundState) error {
	next := *state
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to encode round state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var stored *models.RoundState
	if current, ok := m.states[state.UserID]; ok {
		stored = decodeStored(current)
	}
	if err := checkSave(stored, state); err != nil {
		return err
	}
	m.states[state.UserID] = data
	state.Version = next.Version
	return nil
}

func (m *MemoryRoundStore) NextRound(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seq[userID]; !ok {
		if stored := decodeStored(m.states[userID]); stored != nil {
			m.seq[userID] = stored.Round
		}
	}
	m.seq[userID]++
	return m.seq[userID], nil
}
