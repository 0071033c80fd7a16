package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFlagName = "config"

// envPrefix derives the environment variable prefix from the command name:
// "missionlens" reads MISSIONLENS_MQTT_BROKER for --mqtt.broker.
func envPrefix(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// addConfigFlag registers --config on fs and arranges for viper to read the
// file, plus the environment, before the command runs.
func addConfigFlag(v *viper.Viper, name string, fs *pflag.FlagSet) *string {
	cfgFile := new(string)
	fs.StringVarP(cfgFile, configFlagName, "c", "", "Read configuration from the specified file; supports JSON, TOML, YAML and HCL.")

	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix(name))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return cfgFile
}

func readConfig(v *viper.Viper, name, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+name))
		}
		v.AddConfigPath(filepath.Join("/etc", name))
		v.SetConfigName(name)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file(%s): %w", cfgFile, err)
	}
	return nil
}

// watchConfig re-reads the configuration file on change and hands viper to
// fn. It is a no-op when no file was loaded.
func watchConfig(v *viper.Viper, fn func(*viper.Viper, fsnotify.Event)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) { fn(v, e) })
	v.WatchConfig()
}
