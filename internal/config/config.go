package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingJWTSecret is returned when neither the config file nor the
// environment provides jwt.secret.
var ErrMissingJWTSecret = errors.New("config: jwt.secret is required")

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	JWT           JWTConfig          `mapstructure:"jwt"`
	Log           LogConfig          `mapstructure:"log"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URI     string        `mapstructure:"uri"`
	Name    string        `mapstructure:"name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type NotificationConfig struct {
	BufferSize     int           `mapstructure:"buffer_size"`
	DeliverTimeout time.Duration `mapstructure:"deliver_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitcoach")
	v.SetDefault("database.timeout", "10s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("notifications.buffer_size", 256)
	v.SetDefault("notifications.deliver_timeout", "5s")
}

// LoadConfig reads config.yaml from path, then applies environment
// overrides (server.address -> SERVER_ADDRESS). A missing file is fine.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, err
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}
	if config.JWT.Secret == "" {
		return config, ErrMissingJWTSecret
	}
	return config, nil
}
