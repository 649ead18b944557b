package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig is the core application identity, loaded from the environment.
type AppConfig struct {
	// ConfigFile is the full path to the config file, empty when none is set.
	ConfigFile string
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (e.g. "local", "staging", "pro").
	Environment string
}

const (
	envAppEnv            = "APP_ENV"
	envAppServiceName    = "APP_SERVICE_NAME"
	envAppServiceVersion = "APP_SERVICE_VERSION"
	envConfigFile        = "CONFIG_FILE"
)

// newAppConfig reads the application identity from environment variables,
// loading a .env file first if one exists.
func newAppConfig() (AppConfig, error) {
	_ = godotenv.Load()

	env := os.Getenv(envAppEnv)
	if env == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppEnv)
	}
	serviceName := os.Getenv(envAppServiceName)
	if serviceName == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppServiceName)
	}

	return AppConfig{
		ConfigFile:     os.Getenv(envConfigFile),
		ServiceName:    serviceName,
		ServiceVersion: os.Getenv(envAppServiceVersion),
		Environment:    env,
	}, nil
}
