package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/c9s/ohlcv/pkg/service"
	"github.com/c9s/ohlcv/pkg/types"
)

type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type ServerConfig struct {
	Bind string `json:"bind" yaml:"bind"`
}

type Config struct {
	// Timeframe is the default timeframe of the build command and the http api
	Timeframe types.Timeframe `json:"timeframe" yaml:"timeframe"`

	// Timeframes are built together when set, overriding Timeframe in the build command
	Timeframes []types.Timeframe `json:"timeframes,omitempty" yaml:"timeframes,omitempty"`

	// StrictOrdering rejects unsorted trades instead of folding them by position
	StrictOrdering bool `json:"strictOrdering" yaml:"strictOrdering"`

	Database *DatabaseConfig          `json:"database,omitempty" yaml:"database,omitempty"`
	Redis    *service.RedisCacheConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
	Server   *ServerConfig            `json:"server,omitempty" yaml:"server,omitempty"`
}

func Default() *Config {
	return &Config{
		Timeframe: types.Timeframe1m,
		Server: &ServerConfig{
			Bind: ":8080",
		},
	}
}

// Load reads the yaml config file on top of the defaults.
func Load(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	return LoadBytes(data)
}

func LoadBytes(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}

	if config.Timeframe == "" {
		config.Timeframe = types.Timeframe1m
	}

	if config.Server == nil {
		config.Server = Default().Server
	}

	if config.Database != nil && (config.Database.Driver == "" || config.Database.DSN == "") {
		return nil, errors.New("database.driver and database.dsn are required when database is configured")
	}

	if config.Redis != nil && config.Redis.TTL < 0 {
		return nil, errors.Errorf("redis.ttl %s must not be negative", config.Redis.TTL)
	}

	return config, nil
}

// TimeframeStrings returns the configured timeframes, falling back to the single default one.
func (c *Config) TimeframeStrings() []string {
	if len(c.Timeframes) == 0 {
		return []string{c.Timeframe.String()}
	}
	return types.TimeframeSlice(c.Timeframes).StringSlice()
}
