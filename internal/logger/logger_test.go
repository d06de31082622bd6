package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet", "nop", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger, mode)
	}
}

func TestKeyValuesReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "engine")

	l.Warn("load failed", "key", "progress", "err", "boom")
	l.Debug("skipped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "load failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "engine", fields["component"])
	assert.Equal(t, "progress", fields["key"])
}

func TestNop_Discards(t *testing.T) {
	l := Nop()
	l.Info("nothing", "a", 1)
	l.Sync()
}
