// Package config holds the user-tunable settings for rminstall.
//
// Settings come from three layers, lowest priority first: compiled
// defaults, an optional rminstall.toml in the XDG config directory, and
// RMINSTALL_* environment variables. The host's own settings file
// (Rainmeter.ini) is not handled here; see pkg/installer.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/rminstall/rminstall/pkg/errors"
)

// Environment variable overrides
const (
	EnvBackupDir  = "RMINSTALL_BACKUP_DIR"
	EnvPluginArch = "RMINSTALL_PLUGIN_ARCH"
	EnvConfigFile = "RMINSTALL_CONFIG"
)

// ConfigFileName is the name of the optional user configuration file
const ConfigFileName = "rminstall.toml"

// Config is the resolved rminstall configuration
type Config struct {
	Backup  BackupConfig  `toml:"backup"`
	Host    HostConfig    `toml:"host"`
	Plugins PluginsConfig `toml:"plugins"`
}

// BackupConfig controls where replaced skins are kept
type BackupConfig struct {
	// FolderName is the subfolder of the skins directory that holds backups
	FolderName string `toml:"folder_name"`
}

// HostConfig describes how to locate and drive the host process
type HostConfig struct {
	// WindowClass and WindowTitle identify the host's control window
	WindowClass string `toml:"window_class"`
	WindowTitle string `toml:"window_title"`

	// Executable is the host binary name under its install directory
	Executable string `toml:"executable"`

	// StopTimeout bounds the wait for the host to exit after a stop request
	StopTimeout time.Duration `toml:"stop_timeout"`

	// StartupDelay is the pause between relaunch and the activation command
	StartupDelay time.Duration `toml:"startup_delay"`
}

// PluginsConfig controls which plugin entries are installed
type PluginsConfig struct {
	// Arch is the plugin folder name inside the package (only 64bit
	// plugins are supported; 32bit entries are skipped)
	Arch string `toml:"arch"`
}

// Default returns the compiled-in configuration
func Default() *Config {
	return &Config{
		Backup: BackupConfig{
			FolderName: "@Backup",
		},
		Host: HostConfig{
			WindowClass:  "DummyRainWClass",
			WindowTitle:  "Rainmeter control window",
			Executable:   "Rainmeter.exe",
			StopTimeout:  5 * time.Second,
			StartupDelay: time.Second,
		},
		Plugins: PluginsConfig{
			Arch: "64bit",
		},
	}
}

// Load resolves the configuration from defaults, the optional config
// file and environment overrides
func Load() (*Config, error) {
	cfg := Default()

	path := configFilePath()
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid rminstall config").
				WithDetail("path", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "cannot read rminstall config").
			WithDetail("path", path)
	}

	applyEnv(cfg)
	return cfg, nil
}

func configFilePath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "rminstall", ConfigFileName)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackupDir); v != "" {
		cfg.Backup.FolderName = v
	}
	if v := os.Getenv(EnvPluginArch); v != "" {
		cfg.Plugins.Arch = v
	}
	if v := os.Getenv("RMINSTALL_STOP_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Host.StopTimeout = time.Duration(secs) * time.Second
		}
	}
}
