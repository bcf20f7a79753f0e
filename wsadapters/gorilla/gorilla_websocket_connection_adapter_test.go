package wsadaptergorilla

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gbdevw/gowsconn/testserver"
	"github.com/gbdevw/gowsconn/wsadapters"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

/*************************************************************************************************/
/* TEST SUITE                                                                                    */
/*************************************************************************************************/

type GorillaWebsocketConnectionAdapterTestSuite struct {
	suite.Suite
	// Websocket test server
	srv *testserver.WebsocketTestServer
}

// Run GorillaWebsocketConnectionAdapterTestSuite test suite
func TestGorillaWebsocketConnectionAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(GorillaWebsocketConnectionAdapterTestSuite))
}

// GorillaWebsocketConnectionAdapterTestSuite - Before all tests
func (suite *GorillaWebsocketConnectionAdapterTestSuite) SetupSuite() {
	suite.srv = testserver.NewWebsocketTestServer("127.0.0.1:0", 100*time.Millisecond, nil)
	require.NoError(suite.T(), suite.srv.Start())
}

// GorillaWebsocketConnectionAdapterTestSuite - After all tests
func (suite *GorillaWebsocketConnectionAdapterTestSuite) TearDownSuite() {
	suite.srv.Stop()
}

/*************************************************************************************************/
/* TESTS                                                                                         */
/*************************************************************************************************/

// # Description
//
// Check adapter fully implements interface.
func (suite *GorillaWebsocketConnectionAdapterTestSuite) TestInterfaceCompliance() {
	var impl interface{} = NewGorillaWebsocketConnectionAdapter(nil, nil)
	_, ok := impl.(wsadapters.WebsocketConnectionAdapterInterface)
	require.True(suite.T(), ok)
}

// # Description
//
// Test Dial and Close against the test server.
//
// Test will succeed if:
//   - Close fails with ErrNotConnected before Dial
//   - Dial succeeds with a 101 response
//   - A second Dial fails with ErrAlreadyConnected
//   - Close succeeds with an application status code
//   - A second Close fails with ErrNotConnected
func (suite *GorillaWebsocketConnectionAdapterTestSuite) TestDialAndClose() {
	adapter := NewGorillaWebsocketConnectionAdapter(nil, nil)
	err := adapter.Close(context.Background(), wsadapters.NormalClosure, "")
	require.ErrorIs(suite.T(), err, wsadapters.ErrNotConnected)
	// Connect
	res, err := adapter.Dial(context.Background(), *suite.srv.Url(testserver.PathAccept))
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusSwitchingProtocols, res.StatusCode)
	_, err = adapter.Dial(context.Background(), *suite.srv.Url(testserver.PathAccept))
	require.ErrorIs(suite.T(), err, wsadapters.ErrAlreadyConnected)
	// Close with an application code
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = adapter.Close(ctx, wsadapters.StatusCode(4000), "bye")
	require.NoError(suite.T(), err)
	err = adapter.Close(ctx, wsadapters.NormalClosure, "")
	require.ErrorIs(suite.T(), err, wsadapters.ErrNotConnected)
}

// # Description
//
// Test Dial fails when the server rejects the handshake or when ctx is already canceled.
func (suite *GorillaWebsocketConnectionAdapterTestSuite) TestDialFailures() {
	adapter := NewGorillaWebsocketConnectionAdapter(nil, nil)
	res, err := adapter.Dial(context.Background(), *suite.srv.Url(testserver.PathReject))
	require.Error(suite.T(), err)
	require.NotNil(suite.T(), res)
	require.Equal(suite.T(), http.StatusForbidden, res.StatusCode)
	// Canceled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = adapter.Dial(ctx, *suite.srv.Url(testserver.PathAccept))
	require.ErrorIs(suite.T(), err, context.Canceled)
	// Adapter can still be used after failures
	_, err = adapter.Dial(context.Background(), *suite.srv.Url(testserver.PathAccept))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), adapter.Close(context.Background(), wsadapters.NormalClosure, ""))
}

// # Description
//
// Test Close fails with a WebsocketCloseError wrapping the context error when the server never
// acknowledges the close message.
func (suite *GorillaWebsocketConnectionAdapterTestSuite) TestCloseTimeout() {
	adapter := NewGorillaWebsocketConnectionAdapter(nil, nil)
	_, err := adapter.Dial(context.Background(), *suite.srv.Url(testserver.PathSilent))
	require.NoError(suite.T(), err)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = adapter.Close(ctx, wsadapters.GoingAway, "")
	require.Error(suite.T(), err)
	closeErr := wsadapters.WebsocketCloseError{}
	require.True(suite.T(), errors.As(err, &closeErr))
	require.Equal(suite.T(), wsadapters.GoingAway, closeErr.Code)
	require.ErrorIs(suite.T(), err, context.DeadlineExceeded)
}
