package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Core settings
	CP949Strict      bool
	DurabilityStrict bool
	DecoderHelper    string
	ArchiveCheck     bool
	HistoryDB        string
	Limits           config.Limits

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (FCUPDATER_*)
// 3. .env files
// 4. Config file (path, or ~/.fcupdater.yaml, or ./.fcupdater.yaml)
// 5. Defaults
//
// A missing config file is not an error. A config file that exists but
// cannot be parsed is.
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fcupdater")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !(errors.As(err, &notFound) || os.IsNotExist(err)) {
			return nil, errors.NewConfigError("config", "reading "+configName(path), err)
		}
	}

	return &Config{
		Format:     config.GetString(config.KeyOutputFormat),
		ConfigFile: viper.ConfigFileUsed(),

		CP949Strict:      config.GetBool(config.KeyCP949Strict),
		DurabilityStrict: config.GetBool(config.KeyDurabilityStrict),
		DecoderHelper:    config.GetString(config.KeyDecoderHelper),
		ArchiveCheck:     config.GetBool(config.KeyArchiveCheck),
		HistoryDB:        config.GetString(config.KeyHistoryDB),
		Limits:           config.LimitsFromViper(),

		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags so that
// flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded last; godotenv never overrides a variable that is
// already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func configName(path string) string {
	if path == "" {
		return "config file"
	}
	return path
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
