package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloglist/internal/platform/config"
)

func TestNew_Unreachable(t *testing.T) {
	c, err := New(Config{
		Address:     "invalid:9999",
		MaxRetries:  1,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
		PoolSize:    1,
	}, slog.Default())
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.RedisConfig{
		Host:        "cache",
		Port:        6380,
		DB:          2,
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	}, "bloglist:")

	assert.Equal(t, "cache:6380", cfg.Address)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 7, cfg.PoolSize)
	assert.Equal(t, "bloglist:", cfg.KeyPrefix)

	opts := cfg.options()
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}

func TestCache_Key(t *testing.T) {
	c := &Cache{prefix: "bloglist:"}
	assert.Equal(t, "bloglist:entries:all", c.Key("entries:all"))
	assert.Equal(t, []string{"bloglist:a", "bloglist:b"}, c.keys([]string{"a", "b"}))

	assert.Equal(t, "entries:all", (&Cache{}).Key("entries:all"))
}

func TestCache_Fail(t *testing.T) {
	c := &Cache{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := c.fail(context.Background(), "get entries:all", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "redis get entries:all: context canceled", err.Error())

	boom := errors.New("boom")
	assert.ErrorIs(t, c.fail(context.Background(), "set", boom), boom)
}

func TestIsContextDone(t *testing.T) {
	assert.True(t, isContextDone(context.Canceled))
	assert.True(t, isContextDone(context.DeadlineExceeded))
	assert.True(t, isContextDone(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.False(t, isContextDone(nil))
	assert.False(t, isContextDone(ErrMiss))
}
