// Package config loads runtime settings from defaults, an optional
// config file, and VOCARDO_* environment variables, in rising
// priority.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the runtime configuration.
type Config struct {
	// DBPath is the SQLite file path. Empty means the default
	// resolution order (VOCARDO_DB, then the XDG data dir).
	DBPath string `mapstructure:"db_path"`

	Server ServerConfig `mapstructure:"server"`
	Engine EngineConfig `mapstructure:"engine"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`

	// RateLimit is the per-client request rate (requests per second);
	// RateBurst is the burst allowance.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// EngineConfig holds the engine tunables surfaced to operators. The
// algorithm internals keep their built-in defaults.
type EngineConfig struct {
	DueLimit           int     `mapstructure:"due_limit"`
	MigrationThreshold int     `mapstructure:"migration_threshold"`
	TargetRetention    float64 `mapstructure:"target_retention"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("engine.due_limit", 50)
	v.SetDefault("engine.migration_threshold", 100)
	v.SetDefault("engine.target_retention", 0.90)
}

// Load reads the configuration. path names a config file explicitly;
// when empty, only defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VOCARDO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
