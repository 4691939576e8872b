package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verboso"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestZapLogger_WritesFieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &ZapLogger{log: zap.New(core)}

	l.Debug("listando produtos", map[string]interface{}{"path": "/products"})
	l.Warn("produto já removido", map[string]interface{}{"product_id": "7"})
	l.Error("falha de rede", errors.New("connection refused"))

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, "/products", entries[0].ContextMap()["path"])
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "connection refused", entries[2].ContextMap()["error"])
	}
}

func TestNewLogger_ReturnsUsableLogger(t *testing.T) {
	assert.NotNil(t, NewLogger("info"))
	assert.NotNil(t, NewDevelopmentLogger("debug"))
	NewNop().Info("descartado", nil)
}
