package wsadapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

/*************************************************************************************************/
/* TEST SUITE                                                                                    */
/*************************************************************************************************/

// Test suite used for WebsocketConnectionAdapterInstrumentationDecorator unit tests
type InstrumentationDecoratorUnitTestSuite struct {
	suite.Suite
	// Records ended spans
	recorder *tracetest.SpanRecorder
	// Tracer provider which uses the recorder
	tracerProvider *sdktrace.TracerProvider
}

// Run InstrumentationDecoratorUnitTestSuite test suite
func TestInstrumentationDecoratorUnitTestSuite(t *testing.T) {
	suite.Run(t, new(InstrumentationDecoratorUnitTestSuite))
}

// Before each test
func (suite *InstrumentationDecoratorUnitTestSuite) SetupTest() {
	suite.recorder = tracetest.NewSpanRecorder()
	suite.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(suite.recorder))
}

/*************************************************************************************************/
/* UNIT TESTS                                                                                    */
/*************************************************************************************************/

// Test factory rejects a nil decorated adapter
func (suite *InstrumentationDecoratorUnitTestSuite) TestFactoryNilDecorated() {
	decorator, err := NewWebsocketConnectionAdapterInstrumentationDecorator(nil, nil)
	require.ErrorIs(suite.T(), err, ErrNilAdapter)
	require.Nil(suite.T(), decorator)
}

// # Description
//
// Test decorator proxies Dial and Close calls to the decorated adapter and records one span per
// call with an error status when the decorated adapter fails.
func (suite *InstrumentationDecoratorUnitTestSuite) TestDialAndClose() {
	target, err := url.Parse("ws://localhost:8080/path")
	require.NoError(suite.T(), err)
	dialErr := fmt.Errorf("handshake refused")
	connMock := NewWebsocketConnectionAdapterInterfaceMock()
	connMock.
		On("Dial", mock.Anything, *target).Return(&http.Response{StatusCode: http.StatusForbidden}, dialErr).Once().
		On("Dial", mock.Anything, *target).Return(&http.Response{StatusCode: http.StatusSwitchingProtocols}, nil).Once().
		On("Close", mock.Anything, StatusCode(4000), "bye").Return(nil)
	decorator, err := NewWebsocketConnectionAdapterInstrumentationDecorator(connMock, suite.tracerProvider)
	require.NoError(suite.T(), err)
	// Failed dial
	resp, err := decorator.Dial(context.Background(), *target)
	require.ErrorIs(suite.T(), err, dialErr)
	require.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)
	// Successful dial
	resp, err = decorator.Dial(context.Background(), *target)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusSwitchingProtocols, resp.StatusCode)
	// Close
	require.NoError(suite.T(), decorator.Close(context.Background(), StatusCode(4000), "bye"))
	// Check calls and spans
	connMock.AssertNumberOfCalls(suite.T(), "Dial", 2)
	connMock.AssertNumberOfCalls(suite.T(), "Close", 1)
	spans := suite.recorder.Ended()
	require.Len(suite.T(), spans, 3)
	require.Equal(suite.T(), spanDial, spans[0].Name())
	require.Equal(suite.T(), codes.Error, spans[0].Status().Code)
	require.Equal(suite.T(), spanDial, spans[1].Name())
	require.Equal(suite.T(), codes.Ok, spans[1].Status().Code)
	require.Equal(suite.T(), spanClose, spans[2].Name())
	require.Equal(suite.T(), codes.Ok, spans[2].Status().Code)
}

// Test WebsocketCloseError message and unwrap
func (suite *InstrumentationDecoratorUnitTestSuite) TestWebsocketCloseError() {
	inner := fmt.Errorf("i/o timeout")
	err := WebsocketCloseError{Code: NormalClosure, Reason: "bye", Err: inner}
	require.Equal(suite.T(), "closing handshake failed: 1000 - bye: i/o timeout", err.Error())
	require.ErrorIs(suite.T(), err, inner)
}
