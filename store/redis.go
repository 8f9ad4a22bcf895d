package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shopflow/shopflow-client/config"
	"github.com/shopflow/shopflow-client/logger"
)

// RedisStore is the production Store backend. Keys are plain Redis strings
// under a configurable prefix; every mutation is also published on a pub/sub
// channel so other open tabs converge without a manual reload.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis using the given configuration and verifies
// the connection before returning.
func NewRedisStore(cfg config.RedisConfig, keyPrefix string) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreWithClient(client, keyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing Redis client. Used in tests with
// miniredis.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// eventChannel is the pub/sub channel carrying mutation events.
func (s *RedisStore) eventChannel() string {
	return s.prefix + "events"
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return err
	}
	s.publish(ctx, Event{ID: uuid.New().String(), Op: OpSet, Key: key, Value: value})
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	removed, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return err
	}
	if removed > 0 {
		s.publish(ctx, Event{ID: uuid.New().String(), Op: OpDelete, Key: key})
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.key(prefix) + "*"
	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		// The events channel shares the key prefix but is not a stored key.
		trimmed := strings.TrimPrefix(full, s.prefix)
		if trimmed == "events" {
			continue
		}
		keys = append(keys, trimmed)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RedisStore) Watch(ctx context.Context) (<-chan Event, error) {
	pubsub := s.client.Subscribe(ctx, s.eventChannel())

	// Confirm the subscription before handing the channel out so callers do
	// not miss events published immediately after Watch returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	events := make(chan Event, watchBufferSize)
	go func() {
		defer close(events)
		defer func() { _ = pubsub.Close() }()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.GetLogger().Warnw("Dropping malformed store event", "error", err)
					continue
				}
				select {
				case events <- event:
				default:
					// Consumer is not keeping up; drop rather than stall the
					// subscriber goroutine.
				}
			}
		}
	}()

	return events, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// publish broadcasts a mutation event. Publish failures are logged and
// swallowed: cross-tab convergence is best-effort and must never fail a write.
func (s *RedisStore) publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.GetLogger().Errorw("Failed to marshal store event", "error", err)
		return
	}
	if err := s.client.Publish(ctx, s.eventChannel(), payload).Err(); err != nil {
		logger.GetLogger().Warnw("Failed to publish store event",
			"error", err,
			"key", event.Key,
			"op", event.Op,
		)
	}
}
