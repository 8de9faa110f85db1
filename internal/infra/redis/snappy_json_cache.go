package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang/snappy"

	"bloglist/internal/platform/cache"
)

// bytesCacheClient is the part of *cache.Cache the typed caches need.
type bytesCacheClient interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

var _ bytesCacheClient = (*cache.Cache)(nil)

// snappyJSON keeps values of type T as snappy-compressed JSON under prefix:<generation>.
type snappyJSON[T any] struct {
	client bytesCacheClient
	prefix string
	ttl    time.Duration
}

func newSnappyJSON[T any](client bytesCacheClient, prefix string, ttl time.Duration) snappyJSON[T] {
	return snappyJSON[T]{client: client, prefix: prefix, ttl: ttl}
}

func (s snappyJSON[T]) key(gen uint64) string {
	return s.prefix + ":" + strconv.FormatUint(gen, 10)
}

// load reports false with a nil error on a miss.
func (s snappyJSON[T]) load(ctx context.Context, gen uint64) (T, bool, error) {
	var out T
	key := s.key(gen)
	payload, err := s.client.GetBytes(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return out, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return out, true, nil
}

func (s snappyJSON[T]) store(ctx context.Context, gen uint64, value T) error {
	key := s.key(gen)
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.client.Set(ctx, key, snappy.Encode(nil, raw), s.ttl)
}
