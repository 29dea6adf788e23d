package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Home        string
	CLIHome     string
	CLIHomePath string
	DotenvPath  string
	Registry    RegistryConfig
	Logger      LoggerConfig
	Update      UpdateConfig
}

type RegistryConfig struct {
	URL     string
	Timeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type UpdateConfig struct {
	Enabled bool
}

// Source is everything configuration is resolved from. Load fills it from
// the running process; tests build one by hand.
type Source struct {
	Home      string
	LookupEnv func(key string) (string, bool)
}

const defaultRegistryTimeout = 10 * time.Second

var keys = []string{
	"CLI_HOME",
	"LOG_LEVEL",
	"LOGGER_FORMAT",
	"REGISTRY_URL",
	"REGISTRY_TIMEOUT",
	"CHECK_UPDATE",
}

// Load resolves configuration for the current user and process environment.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return LoadFrom(Source{Home: home, LookupEnv: os.LookupEnv})
}

// LoadFrom resolves configuration with the following precedence, highest
// first:
//
//  1. environment variables (src.LookupEnv)
//  2. the dotfile <home>/.env
//  3. built-in defaults
func LoadFrom(src Source) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("CLI_HOME", DefaultCLIHome)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")
	v.SetDefault("REGISTRY_URL", "")
	v.SetDefault("REGISTRY_TIMEOUT", defaultRegistryTimeout.String())
	v.SetDefault("CHECK_UPDATE", true)

	// Dotfile
	var dotenvPath string
	if src.Home != "" {
		dotenvPath = filepath.Join(src.Home, DotenvFile)
		if err := readDotenv(v, dotenvPath); err != nil {
			return nil, err
		}
	}

	// Env
	if src.LookupEnv != nil {
		for _, key := range keys {
			if val, ok := src.LookupEnv(key); ok {
				v.Set(key, val)
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString("REGISTRY_TIMEOUT"))
	if err != nil || timeout <= 0 {
		timeout = defaultRegistryTimeout
	}

	cliHome := v.GetString("CLI_HOME")
	if cliHome == "" {
		cliHome = DefaultCLIHome
	}

	cfg := &Config{
		Home:        src.Home,
		CLIHome:     cliHome,
		CLIHomePath: filepath.Join(src.Home, cliHome),
		DotenvPath:  dotenvPath,
		Registry: RegistryConfig{
			URL:     v.GetString("REGISTRY_URL"),
			Timeout: timeout,
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Update: UpdateConfig{
			Enabled: v.GetBool("CHECK_UPDATE"),
		},
	}

	return cfg, nil
}

// readDotenv merges path into v. A missing file is not an error.
func readDotenv(v *viper.Viper, path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat dotenv %s: %w", path, err)
	}
	if info.IsDir() {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read dotenv %s: %w", path, err)
	}
	return nil
}
