package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"", "console", "json"} {
		l, err := New(Config{Level: "debug", Format: format})
		require.NoError(t, err, format)
		require.NotNil(t, l)
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNamedCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := (&Logger{zl: zap.New(core)}).Named("calc")

	l.Warn("degenerate input", Float64("fo2", 0), Error(errors.New("zero oxygen")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "calc", entries[0].LoggerName)
	assert.Equal(t, "degenerate input", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, 0.0, ctx["fo2"])
	assert.Equal(t, "zero oxygen", ctx["error"])
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := (&Logger{zl: zap.New(core)}).With(String("remote_addr", "10.0.0.1:5000"))

	l.Debug("received", Bool("rule_of_thirds", true), Int64("bytes_in", 42))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "10.0.0.1:5000", ctx["remote_addr"])
	assert.Equal(t, true, ctx["rule_of_thirds"])
	assert.Equal(t, int64(42), ctx["bytes_in"])
}
