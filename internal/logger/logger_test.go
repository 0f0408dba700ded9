package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	assert.NoError(t, Init("development", "debug"))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	assert.NoError(t, Init("production", "warn"))
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, Init("development", "loud"))
}

func TestHelpersWriteToGlobalLogger(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	Debug("debug msg")
	Info("info msg", zap.String("user_id", "u1"))
	Warn("warn msg")
	Error("error msg")

	entries := logs.All()
	assert.Len(t, entries, 4)
	assert.Equal(t, "info msg", entries[1].Message)
	assert.Equal(t, "u1", entries[1].ContextMap()["user_id"])
}

func TestL_NopBeforeInit(t *testing.T) {
	Set(nil)
	assert.NotNil(t, L())
	Info("dropped")
}
