package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/for/sure/log.txt"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapLogger_FieldTypes(t *testing.T) {
	l, logs := newObservedLogger()

	l.Info("resolved",
		DocumentID("doc-1"),
		Stage("resolve"),
		Int("spans", 3),
		Int64("population", 750000),
		Float64("score", 0.93),
		Bool("high_confidence", true),
		Duration("elapsed", 2*time.Millisecond),
		Any("names", []string{"seattle", "wa"}),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "doc-1", ctx["doc_id"])
	assert.Equal(t, "resolve", ctx["stage"])
	assert.Equal(t, int64(3), ctx["spans"])
	assert.Equal(t, int64(750000), ctx["population"])
	assert.Equal(t, 0.93, ctx["score"])
	assert.Equal(t, true, ctx["high_confidence"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, []interface{}{"seattle", "wa"}, ctx["names"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger()

	child := l.Named("geoname").With(String("tier", "geonames"))
	child.Warn("empty tier")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "geoname", entry.LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "geonames", entry.ContextMap()["tier"])
}

func TestZapLogger_SetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "error", OutputPaths: []string{t.TempDir() + "/out.log"}})
	require.NoError(t, err)
	zl := l.(*zapLogger)
	child := l.Named("child").(*zapLogger)
	assert.False(t, child.z.Core().Enabled(zapcore.InfoLevel))

	setter, ok := l.(LevelSetter)
	require.True(t, ok)
	setter.SetLevel("debug")
	assert.True(t, zl.z.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, child.z.Core().Enabled(zapcore.DebugLevel), "children share the level")

	// foreign cores ignore level changes
	observed, _ := newObservedLogger()
	observed.(LevelSetter).SetLevel("error")
	assert.True(t, observed.(*zapLogger).z.Core().Enabled(zapcore.DebugLevel))
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestDefault_SetAndGet(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	l, _ := newObservedLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must not replace the default")
}

//Personal.AI order the ending
