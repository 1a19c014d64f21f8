package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "%q", in)
	}
}

func TestConfig(t *testing.T) {
	lvl := zap.NewAtomicLevelAt(zapcore.WarnLevel)

	prod := config(Options{Env: "PROD"}, lvl)
	assert.Equal(t, "json", prod.Encoding)
	assert.Equal(t, "ts", prod.EncoderConfig.TimeKey)
	assert.True(t, prod.Level.Enabled(zapcore.WarnLevel))
	assert.False(t, prod.Level.Enabled(zapcore.InfoLevel))

	dev := config(Options{Env: "dev"}, lvl)
	assert.Equal(t, "console", dev.Encoding)
}

func TestFieldsStampEveryEntry(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).With(fields(Options{Env: "Prod", Release: "v1.4.0"})...).Info("started")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "sekretariat", ctx["app"])
	assert.Equal(t, "prod", ctx["env"])
	assert.Equal(t, "v1.4.0", ctx["release"])

	core, logs = observer.New(zapcore.DebugLevel)
	zap.New(core).With(fields(Options{Env: "dev"})...).Info("started")
	_, ok := logs.All()[0].ContextMap()["release"]
	assert.False(t, ok, "empty release is omitted")
}

func TestInitLevelIsAdjustable(t *testing.T) {
	lg, err := Init(Options{Level: "error", Env: "dev"})
	require.NoError(t, err)
	defer lg.Closer()

	assert.False(t, lg.Base.Core().Enabled(zapcore.InfoLevel))
	lg.Level.SetLevel(zapcore.DebugLevel)
	assert.True(t, lg.Base.Core().Enabled(zapcore.DebugLevel))
}
