package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddress string
	DatabasePath  string
	JWTSecret     string
	JWTExpiration time.Duration
}

// yamlConfig is the optional file layer, pointed at by CONFIG_FILE.
type yamlConfig struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret          string `yaml:"jwt_secret"`
		JWTExpirationHours int    `yaml:"jwt_expiration_hours"`
	} `yaml:"auth"`
}

// Load resolves configuration in three layers: defaults, then the optional
// YAML file named by CONFIG_FILE, then environment variables (with .env
// loaded first if present). Environment wins.
func Load() (*Config, error) {
	// Missing .env is fine; it only exists in dev setups.
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress: ":8080",
		DatabasePath:  "./devicelink.db",
		JWTSecret:     "change-me-in-production",
		JWTExpiration: 24 * time.Hour,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours < 1 {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS %q", v)
		}
		cfg.JWTExpiration = time.Duration(hours) * time.Hour
	}

	if cfg.JWTSecret == "change-me-in-production" {
		log.Println("Warning: using the default JWT secret; set JWT_SECRET")
	}

	return cfg, nil
}

func applyYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if yc.Server.Address != "" {
		cfg.ServerAddress = yc.Server.Address
	}
	if yc.Database.Path != "" {
		cfg.DatabasePath = yc.Database.Path
	}
	if yc.Auth.JWTSecret != "" {
		cfg.JWTSecret = yc.Auth.JWTSecret
	}
	if yc.Auth.JWTExpirationHours > 0 {
		cfg.JWTExpiration = time.Duration(yc.Auth.JWTExpirationHours) * time.Hour
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
