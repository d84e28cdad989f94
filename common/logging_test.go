package common

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	log := SetupLogger(&LoggingOpts{Debug: true, JSON: true, Service: "sskr", Version: "test"})
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug), "Debug level should be enabled")

	log = SetupLogger(&LoggingOpts{})
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug), "Debug level should be disabled by default")
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}
