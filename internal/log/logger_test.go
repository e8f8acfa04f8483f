package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	prod, err := NewLogger("prod")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))

	dev, err := NewSugar("dev")
	require.NoError(t, err)
	assert.True(t, dev.Desugar().Core().Enabled(zap.DebugLevel))
}
