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

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type GithubConfig struct {
	BaseURL      string        `mapstructure:"baseURL"`
	ClientID     string        `mapstructure:"clientID"`
	ClientSecret string        `mapstructure:"clientSecret"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SafeClient   bool          `mapstructure:"safeClient"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Storage struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Mongo struct {
			URI            string        `mapstructure:"uri"`
			DB             string        `mapstructure:"db"`
			ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
		} `mapstructure:"mongo"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Github GithubConfig `mapstructure:"github"`
}

// InitConfig loads config.yml from the usual locations, falling back to the
// embedded copy. Any key can be overridden from the environment with the
// DEVCONNECTOR_ prefix, e.g. DEVCONNECTOR_JWT_SECRETKEY.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("devconnector")
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
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

const (
	placeholderSecret = "change-me-in-env"
	minSecretLen      = 32
)

// Validate rejects configurations the server cannot start with. Outside
// development the JWT secret must be replaced and at least 32 bytes long.
func (c Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secretKey must be set")
	}
	if c.Mode != "" && c.Mode != "development" {
		if c.JWT.SecretKey == placeholderSecret {
			return fmt.Errorf("jwt.secretKey still holds the placeholder value in %s mode", c.Mode)
		}
		if len(c.JWT.SecretKey) < minSecretLen {
			return fmt.Errorf("jwt.secretKey must be at least %d bytes in %s mode", minSecretLen, c.Mode)
		}
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive, got %s", c.JWT.TTL)
	}
	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverMongo, DriverPostgres, c.Storage.Driver)
	}
	return nil
}
