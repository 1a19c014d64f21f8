// Package logging builds the service-wide zap logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the encoder and the fields stamped on every entry.
type Options struct {
	Level   string
	Env     string // "prod" switches to the JSON production encoder
	Release string
}

type Log struct {
	Base *zap.Logger
	// Level can be changed at runtime; it is served on /api/admin/log-level.
	Level  zap.AtomicLevel
	Closer func()
}

// ParseLevel falls back to info for empty or unknown names.
func ParseLevel(name string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func config(o Options, lvl zap.AtomicLevel) zap.Config {
	var cfg zap.Config
	if strings.EqualFold(o.Env, "prod") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func fields(o Options) []zap.Field {
	fs := []zap.Field{zap.String("app", "sekretariat"), zap.String("env", strings.ToLower(o.Env))}
	if o.Release != "" {
		fs = append(fs, zap.String("release", o.Release))
	}
	return fs
}

func Init(o Options) (*Log, error) {
	lvl := zap.NewAtomicLevelAt(ParseLevel(o.Level))
	base, err := config(o, lvl).Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	base = base.With(fields(o)...)
	return &Log{
		Base:   base,
		Level:  lvl,
		Closer: func() { _ = base.Sync() },
	}, nil
}
