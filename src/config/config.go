// Package config layers the settings shared by srtplot and srtstats: defaults,
// the optional config file, SRTPLOT_* environment variables and command line
// flags, in increasing precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment prefix of every setting, so SRTPLOT_LOG_LEVEL
// overrides log-level.
const EnvPrefix = "SRTPLOT"

// DefaultPath returns $HOME/.config/srtplot/config.yml, or "" without a home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "srtplot", "config.yml")
}

// Load binds fs and reads the file named by its "config" flag. An explicit
// file must exist; the default location is optional.
func Load(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("assets-host", "")
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	configPath, _ := fs.GetString("config")
	path := configPath
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if configPath != "" || (!errors.As(err, &configFileNotFound) && !os.IsNotExist(err)) {
			return nil, err
		}
	}
	return v, nil
}
