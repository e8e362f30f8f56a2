package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerTagsModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := newZapLogger(core)

	l.Debug(ModuleIRC, "dropped", nil)
	l.Info(ModuleIRC, "Connected", map[string]interface{}{"server": "irc.libera.chat"})
	l.Error(ModuleQuery, "Attempt failed", map[string]interface{}{"error": "boom"})
	l.Warn(ModuleStorage, "bare", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	info := entries[0].ContextMap()
	assert.Equal(t, "Connected", entries[0].Message)
	assert.Equal(t, "IRC", info["module"])
	assert.Equal(t, map[string]interface{}{"server": "irc.libera.chat"}, info["details"])

	errFields := entries[1].ContextMap()
	assert.Equal(t, "QUERY", errFields["module"])
	assert.Equal(t, "boom", errFields["error_ref"])

	bare := entries[2].ContextMap()
	assert.Equal(t, "STORAGE", bare["module"])
	assert.NotContains(t, bare, "details")
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNopLogger()
	l.Info(ModuleServer, "nothing", map[string]interface{}{"k": 1})
	assert.NoError(t, l.Sync())
}
