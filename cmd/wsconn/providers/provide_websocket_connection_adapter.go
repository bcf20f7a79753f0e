package providers

import (
	"github.com/gbdevw/gowsconn/cmd/wsconn/configuration"
	"github.com/gbdevw/gowsconn/wsadapters"
	wsadaptergorilla "github.com/gbdevw/gowsconn/wsadapters/gorilla"
	wsadapternhooyr "github.com/gbdevw/gowsconn/wsadapters/nhooyr"
	"go.opentelemetry.io/otel/trace"
)

func ProvideWebsocketConnectionAdapter(
	config configuration.Configuration,
	tracerProvider trace.TracerProvider) (wsadapters.WebsocketConnectionAdapterInterface, error) {
	var conn wsadapters.WebsocketConnectionAdapterInterface
	if config.Adapter == configuration.AdapterGorilla {
		conn = wsadaptergorilla.NewGorillaWebsocketConnectionAdapter(nil, nil)
	} else {
		conn = wsadapternhooyr.NewNhooyrWebsocketConnectionAdapter(nil)
	}
	// Instrument the adapter
	return wsadapters.NewWebsocketConnectionAdapterInstrumentationDecorator(conn, tracerProvider)
}
