// Package config holds the runtime settings of the reconciliation core and
// helpers that read them through Viper.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by fcupdater.
const EnvPrefix = "FCUPDATER"

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(envName(key))
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// GetInt reads an integer setting. Unparsable values yield 0 so that the
// limit defaults apply.
func GetInt(key string) int {
	raw := strings.TrimSpace(GetString(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// GetBool reads a boolean setting. Accepts 1/true/yes/on in any case.
func GetBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(GetString(key))) {
	case "1", "true", "yes", "on", "y":
		return true
	}
	return false
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
