package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	log, err := New(Config{Level: "warn", Encoding: "json", OutputPaths: []string{out}})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	log.Warn("page write-back failed", zap.Int64("offset", 65536))
	log.Info("dropped")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"page write-back failed"`)
	assert.Contains(t, string(data), `"offset":65536`)
	assert.NotContains(t, string(data), "dropped")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestGlobalLogger(t *testing.T) {
	assert.NotNil(t, Get())
	require.NoError(t, Init(Config{Level: "debug", OutputPaths: []string{filepath.Join(t.TempDir(), "log")}}))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
	assert.NoError(t, Sync())

	nop := zap.NewNop()
	restore := Set(nop)
	assert.Same(t, nop, Get())
	restore()
	assert.NotSame(t, nop, Get())
}
