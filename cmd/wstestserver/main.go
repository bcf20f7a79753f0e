package main

import (
	"github.com/gbdevw/gowsconn/cmd/wstestserver/configuration"
	"github.com/gbdevw/gowsconn/cmd/wstestserver/providers"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.Provide(configuration.LoadConfiguration),
		fx.Provide(providers.ProvideLogger),
		// Use invoke to force dependency to be instanciated and hooks to be registered and executed
		fx.Invoke(providers.ProvideTestServer),
	).Run()
}
