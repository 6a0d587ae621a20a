package redis

// Package redis provides Redis-based adapters for the parent portal.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedirectTTL bounds how long a pending post-login destination is
// remembered. A parent who abandons the login flow should not be redirected
// somewhere surprising days later.
const DefaultRedirectTTL = 15 * time.Minute

// defaultPath is returned when the slot is empty.
const defaultPath = "/"

// RedirectStore is a Redis-backed single-slot store for the post-login
// redirect path. The slot is single-use: Pop deletes the key as it reads.
type RedirectStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedirectStore creates a redirect store with the default key prefix and TTL.
func NewRedirectStore(client redis.UniversalClient) *RedirectStore {
	return &RedirectStore{
		client: client,
		prefix: "redirect:",
		ttl:    DefaultRedirectTTL,
	}
}

// NewRedirectStoreWithOptions creates a redirect store with a custom key
// prefix and TTL. A non-positive TTL falls back to the default.
func NewRedirectStoreWithOptions(client redis.UniversalClient, prefix string, ttl time.Duration) *RedirectStore {
	if ttl <= 0 {
		ttl = DefaultRedirectTTL
	}
	return &RedirectStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Set remembers the destination path for the given client.
func (s *RedirectStore) Set(ctx context.Context, clientID, path string) error {
	if clientID == "" {
		return errors.New("client ID cannot be empty")
	}
	if path == "" {
		path = defaultPath
	}

	key := s.prefix + clientID
	if err := s.client.Set(ctx, key, path, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Pop reads and clears the slot, returning "/" when it is empty.
// The read and the delete are issued atomically via GETDEL so two racing
// pops cannot both observe the same destination.
func (s *RedirectStore) Pop(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return defaultPath, nil
	}

	key := s.prefix + clientID
	path, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return defaultPath, nil
		}
		return defaultPath, fmt.Errorf("redis getdel: %w", err)
	}
	if path == "" {
		return defaultPath, nil
	}
	return path, nil
}
