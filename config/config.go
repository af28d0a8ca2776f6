// Package config reads the optional per-user forge configuration. Everything
// here has a sensible default; a missing or unreadable file is not an error.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/util"
)

// Config holds the per-user settings.
type Config struct {
	// Keyserver is used to fetch declared public keys during verification.
	Keyserver string `yaml:"keyserver"`
	// Jobs overrides the parallelism of tool sub-builds (default: CPU count).
	Jobs int `yaml:"jobs"`
}

const configFileName = "config.yaml"

const defaultKeyserver = "hkps://keyserver.ubuntu.com"

var config *Config

func configDir() string {
	if dir, ok := os.LookupEnv("FORGE_CONFIG_DIR"); ok {
		return dir
	}
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(dir, "forge")
	}
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "forge")
}

// Get returns the per-user configuration, loading it on first use.
func Get() Config {
	if config == nil {
		loaded := Config{}
		dir := configDir()
		if dir != "" {
			path := filepath.Join(dir, configFileName)
			if util.FileExists(path) {
				if err := util.ReadYaml(path, &loaded); err != nil {
					log.Warning("Ignoring unreadable configuration: %s.\n", err)
					loaded = Config{}
				} else {
					log.Debug("Loaded configuration from '%s'.\n", path)
				}
			}
		}
		if loaded.Keyserver == "" {
			loaded.Keyserver = defaultKeyserver
		}
		if loaded.Jobs <= 0 {
			loaded.Jobs = runtime.NumCPU()
		}
		config = &loaded
	}
	return *config
}
