// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port               string  `mapstructure:"PORT"`
	Env                string  `mapstructure:"APP_ENV"`
	MongoURIOverride   string  `mapstructure:"MONGO_URI"`
	DBUser             string  `mapstructure:"DB_USER"`
	DBPass             string  `mapstructure:"DB_PASS"`
	DBCluster          string  `mapstructure:"DB_CLUSTER"`
	DBAppName          string  `mapstructure:"DB_APP_NAME"`
	DBName             string  `mapstructure:"DB_NAME"`
	JWTSecret          string  `mapstructure:"JWT_SECRET"`
	TokenTTLHours      int     `mapstructure:"TOKEN_TTL_HOURS"`
	RedisURL           string  `mapstructure:"REDIS_URL"`
	AllowedOrigins     string  `mapstructure:"ALLOWED_ORIGINS"`
	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	SeedAdminEmail     string  `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword  string  `mapstructure:"SEED_ADMIN_PASSWORD"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: could not read .env file: %v", err)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config.%s.yml: %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("MONGO_URI", "")
	viper.SetDefault("DB_USER", "")
	viper.SetDefault("DB_PASS", "")
	viper.SetDefault("DB_CLUSTER", "cluster0.o1uqrsp.mongodb.net")
	viper.SetDefault("DB_APP_NAME", "Cluster0")
	viper.SetDefault("DB_NAME", "forundb")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("SEED_ADMIN_EMAIL", "")
	viper.SetDefault("SEED_ADMIN_PASSWORD", "")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Env = strings.ToLower(strings.TrimSpace(config.Env))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// MongoURI returns MONGO_URI when set, otherwise assembles an SRV connection string
// from the cluster host and credentials.
func (c *Config) MongoURI() string {
	if c.MongoURIOverride != "" {
		return c.MongoURIOverride
	}

	u := url.URL{
		Scheme: "mongodb+srv",
		Host:   c.DBCluster,
		Path:   "/",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPass)
	}
	q := url.Values{}
	q.Set("retryWrites", "true")
	q.Set("w", "majority")
	if c.DBAppName != "" {
		q.Set("appName", c.DBAppName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	if c.MongoURIOverride == "" && c.DBCluster == "" {
		return errors.New("either MONGO_URI or DB_CLUSTER is required")
	}
	if c.TokenTTLHours <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.MongoURIOverride == "" && (c.DBUser == "" || c.DBPass == "") {
			return errors.New("DB_USER and DB_PASS are required in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
