package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLogger(t *testing.T) {
	ctx := context.Background()

	l1 := Ctx(ctx)
	require.NotNil(t, l1)
	assert.Equal(t, defaultLogger, l1)

	var buf bytes.Buffer
	custom := New(&buf, slog.LevelDebug)
	ctx = With(ctx, custom)
	assert.Equal(t, custom, Ctx(ctx))

	Ctx(ctx).Debug("bucketed samples", "series", "east", "buckets", 288)
	assert.Contains(t, buf.String(), "series=east")
	assert.Contains(t, buf.String(), "buckets=288")
}

func TestSetDefaultLogLevel(t *testing.T) {
	t.Cleanup(func() { SetDefaultLogLevel(slog.LevelWarn) })

	assert.False(t, defaultLogger.Enabled(context.Background(), slog.LevelDebug))
	SetDefaultLogLevel(slog.LevelDebug)
	assert.True(t, defaultLogger.Enabled(context.Background(), slog.LevelDebug))
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
