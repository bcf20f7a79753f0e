package testserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WebsocketTestServerTestSuite struct {
	suite.Suite
}

// Run WebsocketTestServerTestSuite test suite
func TestWebsocketTestServerTestSuite(t *testing.T) {
	suite.Run(t, new(WebsocketTestServerTestSuite))
}

// # Description
//
// Test the server start/stop state machine and request paths.
//
// Test will succeed if:
//   - Server can be started once and stopped once
//   - Connections on the accept path complete the closing handshake
//   - Connections on the reject path fail with a 403 response
//   - Connections on the slow path are delayed
func (suite *WebsocketTestServerTestSuite) TestServer() {
	srv := NewWebsocketTestServer("127.0.0.1:0", 200*time.Millisecond, nil)
	require.Error(suite.T(), srv.Stop())
	require.NoError(suite.T(), srv.Start())
	require.Error(suite.T(), srv.Start())
	defer func() { require.NoError(suite.T(), srv.Stop()) }()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Accept
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, srv.Url(PathAccept).String(), nil)
	require.NoError(suite.T(), err)
	err = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(4000, "bye"), time.Now().Add(time.Second))
	require.NoError(suite.T(), err)
	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(suite.T(), ok)
	require.Equal(suite.T(), 4000, closeErr.Code)
	conn.Close()
	// Reject
	_, res, err := websocket.DefaultDialer.DialContext(ctx, srv.Url(PathReject).String(), nil)
	require.ErrorIs(suite.T(), err, websocket.ErrBadHandshake)
	require.Equal(suite.T(), http.StatusForbidden, res.StatusCode)
	// Slow
	start := time.Now()
	conn, _, err = websocket.DefaultDialer.DialContext(ctx, srv.Url(PathSlow).String(), nil)
	require.NoError(suite.T(), err)
	require.GreaterOrEqual(suite.T(), time.Since(start), 200*time.Millisecond)
	conn.Close()
}
