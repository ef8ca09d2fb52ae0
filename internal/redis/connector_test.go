package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/config"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

// closedAddr returns an address nothing listens on anymore.
func closedAddr(t *testing.T) string {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	return addr
}

func TestNewConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), testOptions(mr.Addr()), logger.Nop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewGivesUpAfterTimeout(t *testing.T) {
	addr := closedAddr(t)

	start := time.Now()
	client, err := New(context.Background(), testOptions(addr), logger.Nop())

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), addr)
	assert.ErrorIs(t, err, apperr.ErrRemoteTransport)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewHonoursCancelledContext(t *testing.T) {
	addr := closedAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := testOptions(addr)
	opts.ConnectTimeout = time.Minute

	_, err := New(ctx, opts, logger.Nop())
	require.Error(t, err)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{"connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{"retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{"max wait", func(o *ConnectOptions) { o.MaxWait = -time.Second }},
		{"ping timeout", func(o *ConnectOptions) { o.PingTimeout = 0 }},
		{"warn threshold", func(o *ConnectOptions) { o.WarnThreshold = -1 }},
		{"empty addr", func(o *ConnectOptions) { o.Addr = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions("127.0.0.1:0")
			tt.mutate(&opts)

			_, err := New(context.Background(), opts, logger.Nop())
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrConfiguration)
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		RedisAddr:           "cache:6379",
		RedisDB:             2,
		RedisPoolSize:       7,
		RedisConnectTimeout: 4 * time.Second,
		RedisWarnThreshold:  5,
	}

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.RedisDB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 4*time.Second, opts.ConnectTimeout)
	assert.Equal(t, 5, opts.WarnThreshold)
}
