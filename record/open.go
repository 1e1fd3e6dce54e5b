package record

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/ByLCY/certify/apperr"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	URL     string
	Command string
}

// Options selects the record source. File takes precedence over Redis.
type Options struct {
	File  string
	Redis RedisOptions
}

// Open builds the configured store. Failures are configuration errors.
func Open(opts Options, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.File != "" {
		store, err := LoadFile(opts.File)
		if err != nil {
			return nil, &apperr.ConfigurationError{Resource: "records file", Err: err}
		}
		log.Info("record store ready", zap.String("kind", "file"), zap.String("path", opts.File), zap.Int("records", store.Len()))
		return store, nil
	}
	if opts.Redis.URL == "" {
		return nil, &apperr.ConfigurationError{Resource: "record store", Err: errors.New("neither records file nor redis url configured")}
	}
	client, err := NewRedisClient(opts.Redis.URL)
	if err != nil {
		return nil, &apperr.ConfigurationError{Resource: "redis", Err: err}
	}
	store := NewRedisStore(client, opts.Redis.Command, log)
	log.Info("record store ready", zap.String("kind", "redis"), zap.String("command", store.command))
	return store, nil
}

// Close releases the store's connections, if it holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
