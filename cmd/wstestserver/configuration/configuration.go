package configuration

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

type Configuration struct {
	// Address the server listens on
	Address string `validate:"required,hostname_port"`
	// Delay (milliseconds) applied to handshakes on the slow path
	HandshakeDelayMs int64 `validate:"gte=0"`
}

// Load configuration from environment variables and validate it.
func LoadConfiguration() (Configuration, error) {
	config := Configuration{
		Address:          os.Getenv("WSTESTSERVER_ADDRESS"),
		HandshakeDelayMs: 2000,
	}
	if config.Address == "" {
		config.Address = "0.0.0.0:8081"
	}
	if raw := os.Getenv("WSTESTSERVER_HANDSHAKE_DELAY_MS"); raw != "" {
		delay, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return config, err
		}
		config.HandshakeDelayMs = delay
	}
	return config, validator.New().Struct(config)
}
