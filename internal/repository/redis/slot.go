package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MuzammilBaloch-22/Cakelora/pkg/database"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
)

// SlotStore implements repository.SlotStore using Redis strings.
type SlotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotStore creates a Redis-backed slot store. A zero ttl keeps values
// forever; otherwise every write refreshes the expiry.
func NewSlotStore(client *redis.Client, ttl time.Duration) *SlotStore {
	return &SlotStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the value stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "redis", "GET", "")
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("slot", key)
		}
		return nil, fmt.Errorf("redis get slot: %w", err)
	}
	return data, nil
}

// Set writes value under key with the configured TTL.
func (s *SlotStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "redis", "SET", "")
	defer func() { end(err) }()

	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set slot: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *SlotStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "redis", "DEL", "")
	defer func() { end(err) }()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del slot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SlotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *SlotStore) Close() error {
	return s.client.Close()
}
