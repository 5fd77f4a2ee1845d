package testhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogger(t *testing.T) {
	t.Run("Basic Logging", func(t *testing.T) {
		logger := NewTestLogger(true)

		logger.LogInfo("test info", map[string]interface{}{"key": "value"})
		err := logger.LogError(errors.New("test error"), "error message")
		logger.LogWarn("test warning", nil)
		logger.LogDebug("test debug", nil)

		assert.EqualError(t, err, "test error")
		assert.Len(t, logger.GetInfoMessages(), 1)
		assert.Len(t, logger.GetErrorMessages(), 1)
		assert.Len(t, logger.GetWarnMessages(), 1)
		assert.Len(t, logger.GetDebugMessages(), 1)
	})

	t.Run("Debug Enable/Disable", func(t *testing.T) {
		logger := NewTestLogger(false)

		logger.LogDebug("test debug 1", nil)
		assert.Empty(t, logger.GetDebugMessages())

		logger.EnableDebug()
		logger.LogDebug("test debug 2", nil)
		assert.Len(t, logger.GetDebugMessages(), 1)

		logger.DisableDebug()
		logger.LogDebug("test debug 3", nil)
		assert.Len(t, logger.GetDebugMessages(), 1)
	})

	t.Run("Derived Loggers Share Entries", func(t *testing.T) {
		logger := NewTestLogger(true)
		child := logger.WithFields(map[string]interface{}{"base": "value"})
		child.WithRequestID("req-1").LogInfo("test", map[string]interface{}{"additional": "value"})

		messages := logger.GetInfoMessages()
		require.Len(t, messages, 1)
		assert.Equal(t, "value", messages[0].Fields["base"])
		assert.Equal(t, "value", messages[0].Fields["additional"])
		assert.Equal(t, "req-1", messages[0].Fields["requestID"])
	})

	t.Run("Fatal Does Not Exit", func(t *testing.T) {
		logger := NewTestLogger(false)
		logger.LogFatal(errors.New("boom"), "startup")

		messages := logger.GetErrorMessages()
		require.Len(t, messages, 1)
		assert.Equal(t, "FATAL: startup", messages[0].Message)
	})
}
