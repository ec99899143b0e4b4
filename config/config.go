package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const envPrefix = "SEATSCOUT"

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
		RateLimit      struct {
			PerSecond float64 `mapstructure:"perSecond"`
			Burst     int     `mapstructure:"burst"`
		} `mapstructure:"rateLimit"`
	} `mapstructure:"server"`
	Places struct {
		APIKey        string        `mapstructure:"apiKey"`
		BaseURL       string        `mapstructure:"baseURL"`
		RadiusMeters  float64       `mapstructure:"radiusMeters"`
		MaxResults    int           `mapstructure:"maxResults"`
		Timeout       time.Duration `mapstructure:"timeout"`
		RatePerSecond float64       `mapstructure:"ratePerSecond"`
		Retries       uint          `mapstructure:"retries"`
		CacheTTL      time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"places"`
	Geocode struct {
		APIKey    string        `mapstructure:"apiKey"`
		BaseURL   string        `mapstructure:"baseURL"`
		CacheSize int           `mapstructure:"cacheSize"`
		CacheTTL  time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"geocode"`
	Repositories struct {
		Postgres struct {
			Enabled  bool   `mapstructure:"enabled"`
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMODE  string `mapstructure:"SSLMODE"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// SEATSCOUT_PLACES_APIKEY overrides places.apiKey, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Geocode.APIKey == "" {
		config.Geocode.APIKey = config.Places.APIKey
	}
	return config, nil
}
