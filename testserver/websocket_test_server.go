// This package contains a websocket server used to exercise the client connection lifecycle:
// depending on the request path, it accepts, rejects, delays or ignores websocket connections.
package testserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Request paths served by the test server.
const (
	// Accept the connection and acknowledge the closing handshake.
	PathAccept = "/"
	// Reject the websocket handshake with a 403 Forbidden response.
	PathReject = "/reject"
	// Wait for the configured handshake delay before accepting the connection.
	PathSlow = "/slow"
	// Accept the connection but never read from it: closing handshakes are never acknowledged.
	PathSilent = "/silent"
)

// Structure for the websocket test server
type WebsocketTestServer struct {
	// Underlying http.Server
	httpServer *http.Server
	// Listener used by the http server. Set by Start.
	listener net.Listener
	// Websocket upgrader
	upgrader websocket.Upgrader
	// Delay applied before accepting connections on PathSlow
	handshakeDelay time.Duration
	// Indicates that server has started
	started bool
	// Context bound to websocket server lifetime
	serverCtx context.Context
	// Cancel function used to stop server
	cancelServerCtx context.CancelFunc
	// Internal mutex used to coordinate start/stop
	startMu *sync.Mutex
	// Logger
	logger *zap.Logger
}

// # Description
//
// Factory which creates a new, non-started WebsocketTestServer.
//
// # Inputs
//
//   - addr: Address the server will listen on. Use "127.0.0.1:0" to pick a free port.
//   - handshakeDelay: Delay applied before accepting connections on PathSlow.
//   - logger: Logger to use. If nil, a Nop logger is used.
//
// # Returns
//
// A new, non-started WebsocketTestServer.
func NewWebsocketTestServer(addr string, handshakeDelay time.Duration, logger *zap.Logger) *WebsocketTestServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &WebsocketTestServer{
		upgrader:       websocket.Upgrader{},
		handshakeDelay: handshakeDelay,
		started:        false,
		startMu:        &sync.Mutex{},
		logger:         logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(PathAccept, srv.serveAccept)
	mux.HandleFunc(PathReject, srv.serveReject)
	mux.HandleFunc(PathSlow, srv.serveSlow)
	mux.HandleFunc(PathSilent, srv.serveSilent)
	srv.httpServer = &http.Server{
		Addr:     addr,
		Handler:  mux,
		ErrorLog: zap.NewStdLog(logger),
	}
	return srv
}

// # Description
//
// Start the websocket server. The server listens before Start returns so clients can connect
// as soon as Start completes.
func (srv *WebsocketTestServer) Start() error {
	srv.startMu.Lock()
	defer srv.startMu.Unlock()
	if srv.started {
		return fmt.Errorf("server already started")
	}
	listener, err := net.Listen("tcp", srv.httpServer.Addr)
	if err != nil {
		return err
	}
	srv.listener = listener
	srv.serverCtx, srv.cancelServerCtx = context.WithCancel(context.Background())
	srv.started = true
	go func() {
		err := srv.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Error("server stopped unexpectedly", zap.Error(err))
		}
	}()
	srv.logger.Info("websocket test server started", zap.String("addr", listener.Addr().String()))
	return nil
}

// # Description
//
// Stop the websocket server and close all client connections.
func (srv *WebsocketTestServer) Stop() error {
	srv.startMu.Lock()
	defer srv.startMu.Unlock()
	if !srv.started {
		return fmt.Errorf("server not started")
	}
	srv.started = false
	// Cancel server context to close all client connections
	srv.cancelServerCtx()
	return srv.httpServer.Close()
}

// # Description
//
// Return the websocket URL of the provided path. Must be called after Start.
func (srv *WebsocketTestServer) Url(path string) *url.URL {
	srv.startMu.Lock()
	defer srv.startMu.Unlock()
	host := srv.httpServer.Addr
	if srv.listener != nil {
		host = srv.listener.Addr().String()
	}
	return &url.URL{Scheme: "ws", Host: host, Path: path}
}

/*************************************************************************************************/
/* HANDLERS                                                                                      */
/*************************************************************************************************/

func (srv *WebsocketTestServer) serveAccept(w http.ResponseWriter, r *http.Request) {
	conn, sessionId, ok := srv.accept(w, r)
	if !ok {
		return
	}
	go srv.closeWatchdog(conn)
	go srv.runClientSession(sessionId, conn)
}

func (srv *WebsocketTestServer) serveReject(w http.ResponseWriter, r *http.Request) {
	srv.logger.Info("rejecting client connection", zap.String("remote", r.RemoteAddr))
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func (srv *WebsocketTestServer) serveSlow(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(srv.handshakeDelay):
		srv.serveAccept(w, r)
	case <-r.Context().Done():
		srv.logger.Info("client left before delayed handshake", zap.String("remote", r.RemoteAddr))
	}
}

func (srv *WebsocketTestServer) serveSilent(w http.ResponseWriter, r *http.Request) {
	conn, _, ok := srv.accept(w, r)
	if !ok {
		return
	}
	// Never read: close messages are not processed
	go srv.closeWatchdog(conn)
}

// Upgrade the connection and return it with a new session ID.
func (srv *WebsocketTestServer) accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, string, bool) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Error("an error occured while accepting client connection", zap.Error(err))
		return nil, "", false
	}
	sessionId := uuid.New().String()
	srv.logger.Info("new client connection", zap.String("session", sessionId), zap.String("path", r.URL.Path))
	return conn, sessionId, true
}

// Read messages until the connection is closed. The default gorilla close handler acknowledges
// close messages from the client.
func (srv *WebsocketTestServer) runClientSession(sessionId string, conn *websocket.Conn) {
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			closeErr := new(websocket.CloseError)
			if errors.As(err, &closeErr) {
				srv.logger.Info("connection closed by client",
					zap.String("session", sessionId),
					zap.Int("code", closeErr.Code),
					zap.String("reason", closeErr.Text))
			} else {
				srv.logger.Info("connection lost", zap.String("session", sessionId), zap.Error(err))
			}
			conn.Close()
			return
		}
	}
}

// Close the connection once the server stops.
func (srv *WebsocketTestServer) closeWatchdog(conn *websocket.Conn) {
	srv.startMu.Lock()
	ctx := srv.serverCtx
	srv.startMu.Unlock()
	<-ctx.Done()
	conn.Close()
}
