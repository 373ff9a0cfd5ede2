// Package config resolves punch settings from viper, the environment and
// well-known file locations.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so database.path
// is read from PUNCH_DATABASE_PATH.
const EnvPrefix = "PUNCH"

// BindEnv lets environment variables override nested configuration keys.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references. Paths the home directory cannot be resolved for are
// left as given.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~" || strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
