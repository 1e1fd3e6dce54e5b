package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the root *zap.Logger and installs it as the global logger.
var Module = fx.Module("logger",
	fx.Provide(NewFromFx),
)

// NewFromFx builds the logger from cfg and flushes it on shutdown.
func NewFromFx(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	log, err := New(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}
