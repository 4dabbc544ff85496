package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("warn")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	l, err := New("loud")
	assert.Error(t, err)
	assert.Nil(t, l)
}
