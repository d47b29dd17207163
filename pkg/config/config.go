// Package config loads service configuration from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config exposes typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *viperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *viperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *viperConfig) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

func (c *viperConfig) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

const configDir = "configs"

// Options tweaks how Load resolves configuration.
type Options struct {
	// Defaults are applied before the file and the environment.
	Defaults map[string]interface{}
	// EnvFile is loaded into the process environment when present. Defaults to ".env".
	EnvFile string
}

// Load reads configs/{APP_ENV}/{serviceName}.yaml, falling back to
// configs/example/{serviceName}.yaml. Environment variables prefixed with the
// upper-cased service name override file values ("database.host" -> AUTH_DATABASE_HOST).
func Load(serviceName string) (Config, error) {
	return LoadWithOptions(serviceName, Options{})
}

// LoadWithOptions is Load with defaults and a custom dotenv file.
func LoadWithOptions(serviceName string, opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(configDir, env)
	}

	v.SetConfigName(serviceName)
	v.AddConfigPath(configPath)

	if err := v.ReadInConfig(); err != nil {
		v.AddConfigPath(filepath.Join(configDir, "example"))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config for %s: %w", serviceName, err)
		}
	}

	return &viperConfig{v: v}, nil
}
