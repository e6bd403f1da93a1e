package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr      string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	SessionStore  string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	OpenAIAPIKey  string
	GuestPassword string
}

var defaults = map[string]string{
	"HTTP_ADDR":      ":8080",
	"DB_DRIVER":      "mysql",
	"DB_HOST":        "localhost",
	"DB_PORT":        "3306",
	"DB_USER":        "taskuser",
	"DB_PASSWORD":    "taskpassword",
	"DB_NAME":        "taskboard",
	"DB_PATH":        "taskboard.db",
	"SESSION_STORE":  "redis",
	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     "6379",
	"SESSION_SECRET": "default-secret-key-change-me",
	"GIN_MODE":       "debug",
	"OPENAI_API_KEY": "",
	"GUEST_PASSWORD": "guest",
}

// Load reads configuration from the environment, an optional .env file and
// an optional YAML file named by CONFIG_FILE. Environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBPath:        v.GetString("DB_PATH"),
		SessionStore:  v.GetString("SESSION_STORE"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		GinMode:       v.GetString("GIN_MODE"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		GuestPassword: v.GetString("GUEST_PASSWORD"),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
