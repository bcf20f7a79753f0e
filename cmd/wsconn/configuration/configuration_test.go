package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigurationUnitTestSuite struct {
	suite.Suite
}

// Run ConfigurationUnitTestSuite test suite
func TestConfigurationUnitTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigurationUnitTestSuite))
}

// # Description
//
// Test configuration is loaded from environment variables with defaults.
func (suite *ConfigurationUnitTestSuite) TestLoadConfiguration() {
	suite.T().Setenv("WSCONN_SERVER_URL", "ws://localhost:8081")
	suite.T().Setenv("WSCONN_ADAPTER", "")
	suite.T().Setenv("WSCONN_TRACING_ENABLED", "")
	suite.T().Setenv("WSCONN_TRACING_ENDPOINT", "")
	config, err := LoadConfiguration()
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "ws://localhost:8081", config.ServerUrl)
	require.Equal(suite.T(), AdapterNhooyr, config.Adapter)
}

// # Description
//
// Test invalid configurations are rejected.
func (suite *ConfigurationUnitTestSuite) TestInvalidConfiguration() {
	suite.T().Setenv("WSCONN_SERVER_URL", "")
	suite.T().Setenv("WSCONN_ADAPTER", AdapterGorilla)
	suite.T().Setenv("WSCONN_TRACING_ENABLED", "")
	suite.T().Setenv("WSCONN_TRACING_ENDPOINT", "")
	_, err := LoadConfiguration()
	require.Error(suite.T(), err)
	// Unknown adapter
	suite.T().Setenv("WSCONN_SERVER_URL", "ws://localhost:8081")
	suite.T().Setenv("WSCONN_ADAPTER", "fasthttp")
	_, err = LoadConfiguration()
	require.Error(suite.T(), err)
	// Tracing enabled without endpoint
	suite.T().Setenv("WSCONN_ADAPTER", AdapterGorilla)
	suite.T().Setenv("WSCONN_TRACING_ENABLED", "true")
	_, err = LoadConfiguration()
	require.Error(suite.T(), err)
	suite.T().Setenv("WSCONN_TRACING_ENDPOINT", "localhost:4318")
	_, err = LoadConfiguration()
	require.NoError(suite.T(), err)
}
