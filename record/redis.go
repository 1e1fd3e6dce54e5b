package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ByLCY/certify/apperr"
)

// Commands understood by RedisStore.
const (
	CommandJSONGet = "JSON.GET"
	CommandGet     = "GET"
)

// RedisStore reads records stored as JSON under cert:<id>. By default it
// uses RedisJSON's JSON.GET; plain string values work with CommandGet.
type RedisStore struct {
	client  redis.UniversalClient
	command string
	log     *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, command string, log *zap.Logger) *RedisStore {
	command = strings.ToUpper(strings.TrimSpace(command))
	if command != CommandGet {
		command = CommandJSONGet
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{client: client, command: command, log: log}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (Record, error) {
	key := Key(id)
	raw, err := s.client.Do(ctx, s.command, key).Text()
	if errors.Is(err, redis.Nil) {
		s.log.Debug("record not found", zap.String("key", key))
		return Record{}, fmt.Errorf("get %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%s %s: %w", s.command, key, err)
	}
	s.log.Debug("record loaded", zap.String("key", key), zap.String("command", s.command))
	rec, err := Decode([]byte(raw))
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", key, err)
	}
	return rec, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }
