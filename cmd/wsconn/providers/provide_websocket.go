package providers

import (
	"context"
	"sync"

	"github.com/gbdevw/gowsconn/cmd/wsconn/configuration"
	"github.com/gbdevw/gowsconn/events"
	"github.com/gbdevw/gowsconn/taskloop"
	"github.com/gbdevw/gowsconn/websocket"
	"github.com/gbdevw/gowsconn/wsadapters"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideWebsocket(
	lc fx.Lifecycle,
	config configuration.Configuration,
	loop *taskloop.Loop,
	conn wsadapters.WebsocketConnectionAdapterInterface,
	logger *zap.Logger,
	tracerProvider trace.TracerProvider) (*websocket.WebSocket, error) {
	// Create connection - the opening handshake starts once the loop runs
	ws, err := websocket.New(loop, config.ServerUrl, conn, nil, logger, tracerProvider, nil)
	if err != nil {
		return nil, err
	}
	// Log events
	closed := make(chan struct{})
	closedOnce := &sync.Once{}
	ws.OnOpen(func(ctx context.Context, event *events.Event) {
		logger.Info("connection open", zap.String("url", ws.URL()))
	})
	ws.OnError(func(ctx context.Context, event *events.Event) {
		logger.Error("connection failed", zap.Error(event.Err))
	})
	ws.OnClose(func(ctx context.Context, event *events.Event) {
		logger.Info("connection closed",
			zap.Uint16("code", event.Code),
			zap.String("reason", event.Reason),
			zap.Bool("clean", event.WasClean))
		closedOnce.Do(func() { close(closed) })
	})
	// Close the connection on shutdown. Hook is registered after the loop hook: it runs first.
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := ws.Close(websocket.WithCode(uint16(wsadapters.NormalClosure)), websocket.WithReason("shutdown")); err != nil {
				return err
			}
			select {
			case <-closed:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return ws, nil
}
