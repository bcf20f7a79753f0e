package providers

import (
	"context"
	"time"

	"github.com/gbdevw/gowsconn/cmd/wstestserver/configuration"
	"github.com/gbdevw/gowsconn/testserver"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideTestServer(lc fx.Lifecycle, config configuration.Configuration, logger *zap.Logger) *testserver.WebsocketTestServer {
	srv := testserver.NewWebsocketTestServer(
		config.Address,
		time.Duration(config.HandshakeDelayMs)*time.Millisecond,
		logger)
	// Register Start and Stop hooks to Start and Stop the server
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop()
		},
	})
	return srv
}
