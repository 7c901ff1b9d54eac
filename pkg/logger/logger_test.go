package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("loud"))
	assert.Equal(t, "WARN", LevelWarn.String())
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelInfo})

	l.With(Component("http")).WithRequestID("req-1").Info("score submitted",
		UserID("u-1"),
		GameType("WORDLE"),
		Int("rating_change", 19),
		Latency(1500*time.Millisecond),
		Err(errors.New("boom")),
	)
	l.Debug("hidden")

	records := decode(t, &buf)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "score submitted", r["msg"])
	assert.Equal(t, "INFO", r["level"])
	assert.Equal(t, "http", r["component"])
	assert.Equal(t, "req-1", r[RequestIDKey])
	assert.Equal(t, "u-1", r["user_id"])
	assert.Equal(t, "WORDLE", r["game_type"])
	assert.Equal(t, float64(19), r["rating_change"])
	assert.Equal(t, "1.5s", r["latency"])
	assert.Equal(t, "boom", r["error"])
}

func TestLogger_SlogSharesHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelDebug}).With(Component("worker"))

	l.Slog().Debug("from slog", "job", "rebuild_leaderboard")

	records := decode(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "worker", records[0]["component"])
	assert.Equal(t, "rebuild_leaderboard", records[0]["job"])
	assert.True(t, l.Slog().Enabled(context.Background(), slog.LevelDebug))
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Output: &buf, Format: "text"}).Warn("careful", String("k", "v"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "k=v")
}

func TestContext(t *testing.T) {
	l := New(Options{Output: &bytes.Buffer{}})
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
