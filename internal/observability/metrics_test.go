package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/lottery-auth/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/auth/login", "POST", 200, 3*time.Millisecond)
	m.RecordRequest("/api/auth/login", "POST", 200, 4*time.Millisecond)
	m.RecordError("/api/auth/me", "GET", "UNAUTHORIZED")
	m.RecordAuth("login_ok")

	snap := m.Snapshot()
	require.EqualValues(t, 2, snap["requests"]["/api/auth/login|POST|200"])
	require.EqualValues(t, 1, snap["errors"]["/api/auth/me|GET|UNAUTHORIZED"])
	require.EqualValues(t, 1, snap["auth"]["login_ok"])
	require.EqualValues(t, 7, snap["latency_ms"]["/api/auth/login|POST|200"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordAuth("x")
	require.Nil(t, m.Snapshot())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
