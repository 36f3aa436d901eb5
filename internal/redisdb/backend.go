// Package redisdb implements a Backend on a Redis server. Each
// configuration key is a hash at <prefix><key> with the fields "value" and
// "data_type".
package redisdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// Hash field names.
const (
	fieldValue    = "value"
	fieldDataType = "data_type"
)

const (
	defaultOpTimeout   = 3 * time.Second
	defaultPingTimeout = 5 * time.Second
)

// errMissingDataType is returned for a hash that lacks the data_type field.
var errMissingDataType = errors.New("redis row has no data_type field")

// Config holds Redis connection configuration.
type Config struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	Prefix   string // Key prefix
}

// Backend stores rows as Redis hashes.
type Backend struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
	logger    zerolog.Logger
}

// Open creates a client for cfg. The connection is verified by EnsureSchema.
func Open(cfg Config, logger zerolog.Logger) *Backend {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})
	return New(client, cfg.Prefix, logger)
}

// New wraps an existing client. The Backend owns the client and closes it
// in Close.
func New(client *redis.Client, prefix string, logger zerolog.Logger) *Backend {
	return &Backend{
		client:    client,
		prefix:    prefix,
		opTimeout: defaultOpTimeout,
		logger:    logger,
	}
}

// EnsureSchema checks that the server is reachable. Hashes need no schema.
func (b *Backend) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	opts := b.client.Options()
	b.logger.Debug().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Str("prefix", b.prefix).
		Msg("connected to Redis")
	return nil
}

// Upsert writes both fields in one HSET so readers never see a value with a
// stale data type.
func (b *Backend) Upsert(key, value string, dataType types.Tag) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	err := b.client.HSet(ctx, b.prefix+key, fieldValue, value, fieldDataType, string(dataType)).Err()
	if err != nil {
		return fmt.Errorf("upserting %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Fetch(key string) (types.Row, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	fields, err := b.client.HGetAll(ctx, b.prefix+key).Result()
	if err != nil {
		return types.Row{}, false, fmt.Errorf("fetching %q: %w", key, err)
	}
	if len(fields) == 0 {
		return types.Row{}, false, nil
	}
	dataType, ok := fields[fieldDataType]
	if !ok {
		return types.Row{}, false, fmt.Errorf("fetching %q: %w", key, errMissingDataType)
	}
	return types.Row{Key: key, Value: fields[fieldValue], DataType: types.Tag(dataType)}, true, nil
}

func (b *Backend) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (b *Backend) Close() error {
	return b.client.Close()
}
