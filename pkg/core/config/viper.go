package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewViperModule provides AppConfig and a *viper.Viper for dependency
// injection. The config file path comes from AppConfig.ConfigFile; when it
// is empty an env-only viper instance is provided.
func NewViperModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newAppConfig,
			newViper,
		),
		fx.Invoke(func(log *zap.Logger, conf AppConfig, v *viper.Viper) {
			log.Info("configuration loaded",
				zap.String("service", conf.ServiceName),
				zap.String("environment", conf.Environment),
				zap.String("config-file", v.ConfigFileUsed()),
			)
		}),
	)
}

func newViper(conf AppConfig) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if conf.ConfigFile == "" {
		return v, nil
	}

	v.SetConfigFile(conf.ConfigFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", conf.ConfigFile, err)
	}
	return v, nil
}
