package configuration

import (
	"os"

	"github.com/go-playground/validator/v10"
)

// Adapters which can be used to connect to the server
const (
	AdapterNhooyr  = "nhooyr"
	AdapterGorilla = "gorilla"
)

type Configuration struct {
	// URL of the target websocket server
	ServerUrl string `validate:"required,url"`
	// Websocket library used to connect to the server: nhooyr (default) or gorilla
	Adapter string `validate:"oneof=nhooyr gorilla"`
	// Indicates whether tracing is enabled or not
	TracingEnabled string
	// URL of the OTLP/HTTP tracing backend. Required when tracing is enabled.
	TracingEndpoint string `validate:"required_if=TracingEnabled true,required_if=TracingEnabled 1"`
}

// Load configuration from environment variables and validate it.
func LoadConfiguration() (Configuration, error) {
	config := Configuration{
		ServerUrl:       os.Getenv("WSCONN_SERVER_URL"),
		Adapter:         os.Getenv("WSCONN_ADAPTER"),
		TracingEnabled:  os.Getenv("WSCONN_TRACING_ENABLED"),
		TracingEndpoint: os.Getenv("WSCONN_TRACING_ENDPOINT"),
	}
	if config.Adapter == "" {
		config.Adapter = AdapterNhooyr
	}
	return config, validator.New().Struct(config)
}
