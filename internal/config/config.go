package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/logger"
)

// Config is the resolved configuration from flags, environment and defaults.
type Config struct {
	API       APIConfig
	App       AppConfig
	Sandbox   SandboxConfig
	envLoaded string
}

// APIConfig describes the remote API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AppConfig holds local client settings.
type AppConfig struct {
	ConfigDir string
	Debug     bool
}

// SandboxConfig configures the local sandbox server.
type SandboxConfig struct {
	Addr     string
	Database string
	Secret   string
	TokenTTL time.Duration
}

// Load builds the configuration from defaults, an optional .env file and
// the process environment, in increasing order of precedence. envFiles
// that do not exist are skipped.
func Load(envFiles ...string) (*Config, error) {
	cfg := &Config{}
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(ExpandHome(f)); err == nil {
			cfg.envLoaded = f
			break
		}
	}

	cfg.API = APIConfig{
		BaseURL: getEnv("API_URL", constants.DefaultAPIURL),
		Timeout: getEnvAsDuration("TIMEOUT", constants.DefaultHTTPTimeout),
	}
	cfg.App = AppConfig{
		ConfigDir: ExpandHome(getEnv("CONFIG_DIR", constants.DefaultConfigDir)),
		Debug:     getEnvAsBool("DEBUG", false),
	}
	cfg.Sandbox = SandboxConfig{
		Addr:     getEnv("SANDBOX_ADDR", constants.DefaultSandboxAddr),
		Database: getEnv("SANDBOX_DB", constants.DefaultSandboxDB),
		Secret:   getEnv("SANDBOX_SECRET", constants.SandboxDefaultSecret),
		TokenTTL: getEnvAsDuration("SANDBOX_TOKEN_TTL", constants.DefaultTokenTTL),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvFile returns the .env file that was loaded, if any.
func (c *Config) EnvFile() string {
	return c.envLoaded
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: expected scheme and host", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL %q: scheme must be http or https", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.API.Timeout)
	}
	if c.App.ConfigDir == "" {
		return fmt.Errorf("config directory is required")
	}
	if c.Sandbox.TokenTTL <= 0 {
		return fmt.Errorf("sandbox token TTL must be positive, got %s", c.Sandbox.TokenTTL)
	}
	if len(c.Sandbox.Secret) < constants.SandboxMinSecretLength {
		return fmt.Errorf("sandbox secret must be at least %d characters", constants.SandboxMinSecretLength)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(constants.EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(constants.EnvPrefix + key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logger.Warn("Invalid boolean in environment, using default", "key", constants.EnvPrefix+key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(constants.EnvPrefix + key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Warn("Invalid duration in environment, using default", "key", constants.EnvPrefix+key, "default", defaultValue)
		return defaultValue
	}
	return value
}
