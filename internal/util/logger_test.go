package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("development"))
	assert.NotNil(t, GetLogger())

	require.NoError(t, InitLogger("production"))
	assert.NotNil(t, GetLogger())
}

func TestGetLoggerFallback(t *testing.T) {
	logger = nil
	l := GetLogger()
	require.NotNil(t, l)

	// The fallback must be usable before InitLogger runs.
	l.Info("fallback logger smoke test", zap.String("check", "ok"))
}
