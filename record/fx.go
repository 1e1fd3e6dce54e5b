package record

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the Store selected by Options.
var Module = fx.Module("record",
	fx.Provide(NewFromFx),
)

// NewFromFx opens the store, pings Redis on start and closes it on stop.
func NewFromFx(lc fx.Lifecycle, opts Options, log *zap.Logger) (Store, error) {
	store, err := Open(opts, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p, ok := store.(interface{ Ping(context.Context) error }); ok {
				return p.Ping(ctx)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return Close(store)
		},
	})
	return store, nil
}
