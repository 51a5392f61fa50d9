package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"` // development | production
	Hostname    string `mapstructure:"hostname"`
	StaticDir   string `mapstructure:"static_dir"`
}

type MongoConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// BaseURL derives the externally visible base URL from the environment
// flag and hostname.
func (s ServerConfig) BaseURL() string {
	if s.Environment == "production" && s.Hostname != "" {
		return fmt.Sprintf("https://%s", s.Hostname)
	}
	addr := s.Address
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return fmt.Sprintf("http://%s", addr)
}

// StravaRedirectURL is the OAuth callback endpoint under the base URL.
func (s ServerConfig) StravaRedirectURL() string {
	return s.BaseURL() + "/api/v1/strava/callback"
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment override, e.g. server.address -> SERVER_ADDRESS.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.static_dir", "./public")
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.name", "swimtrack")
	viper.SetDefault("postgres.dsn", "host=localhost user=swimtrack dbname=swimtrack sslmode=disable")
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("log.level", "info")

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
