package wsadapters

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/mock"
)

// Mock for WebsocketConnectionAdapterInterface
type WebsocketConnectionAdapterInterfaceMock struct {
	mock.Mock
}

// Factory
func NewWebsocketConnectionAdapterInterfaceMock() *WebsocketConnectionAdapterInterfaceMock {
	return &WebsocketConnectionAdapterInterfaceMock{
		Mock: mock.Mock{},
	}
}

// Mocked Dial method. The first return value can be nil.
func (mock *WebsocketConnectionAdapterInterfaceMock) Dial(ctx context.Context, target url.URL) (*http.Response, error) {
	args := mock.Called(ctx, target)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

// Mocked Close method
func (mock *WebsocketConnectionAdapterInterfaceMock) Close(ctx context.Context, code StatusCode, reason string) error {
	args := mock.Called(ctx, code, reason)
	return args.Error(0)
}
