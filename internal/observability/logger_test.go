package observability

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(config.LoggerConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestNewLoggerBuildsNamedLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "deskpilot-test",
		LogFile:     filepath.Join(t.TempDir(), "test.log"),
		MaxSize:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Must not panic and must honor the configured level.
	logger.Debug("debug message", zap.String("k", "v"))
	require.NoError(t, logger.Sync())
}

func TestGlobalInitializeIsIdempotent(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"}
	Initialize(cfg)
	first := GetLogger()

	// Second call must not replace the stored logger.
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "second"})
	assert.Same(t, first, GetLogger())
}

func TestGetLoggerFallsBackBeforeInit(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// Fallback must be safe to use.
	logger.Info("pre-init message")
}
