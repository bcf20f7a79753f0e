package main

import (
	"github.com/gbdevw/gowsconn/cmd/wsconn/configuration"
	"github.com/gbdevw/gowsconn/cmd/wsconn/providers"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.Provide(configuration.LoadConfiguration),
		fx.Provide(providers.ProvideLogger),
		fx.Provide(providers.ProvideTracerProvider),
		fx.Provide(providers.ProvideWebsocketConnectionAdapter),
		fx.Provide(providers.ProvideLoop),
		// Use invoke to force dependency to be instanciated and hooks to be registered and executed
		fx.Invoke(providers.ProvideWebsocket),
	).Run()
}
