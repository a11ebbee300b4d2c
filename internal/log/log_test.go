package log

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestL_defaultsToNop(t *testing.T) {
	logger = nil
	loggerOnce = sync.Once{}
	l := L()
	require.NotNil(t, l)
	require.False(t, l.Core().Enabled(zap.DebugLevel))
}

func TestSetLogger_overridesDefault(t *testing.T) {
	core, recorded := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))

	L().Info("hello", Str("k", "v"), Int("n", 1))

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, "hello", entries[0].Message)
}
