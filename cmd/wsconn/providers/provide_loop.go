package providers

import (
	"context"
	"errors"

	"github.com/gbdevw/gowsconn/taskloop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideLoop(lc fx.Lifecycle, logger *zap.Logger, tracerProvider trace.TracerProvider) (*taskloop.Loop, error) {
	loop, err := taskloop.NewLoop(nil, logger, tracerProvider, nil)
	if err != nil {
		return nil, err
	}
	// Register Start and Stop hooks to run and stop the loop
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := loop.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("owner loop exited with an error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return loop.Stop(ctx)
		},
	})
	return loop, nil
}
