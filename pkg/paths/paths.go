// Package paths provides centralized path handling for rminstall.
// It discovers the host application's directories from the environment
// and provides a consistent API for every path the installer touches.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/rminstall/rminstall/pkg/errors"
)

// Environment variable names
const (
	// EnvSettingsDir overrides the host's per-user settings directory
	EnvSettingsDir = "RMINSTALL_SETTINGS_DIR"

	// EnvAppDir overrides the host's install directory
	EnvAppDir = "RMINSTALL_APP_DIR"

	// EnvSkinsDir overrides the default skins directory
	EnvSkinsDir = "RMINSTALL_SKINS_DIR"

	// EnvProgramFiles and EnvAppData are the standard Windows locations
	// the host installs under
	EnvProgramFiles = "PROGRAMFILES"
	EnvAppData      = "APPDATA"
	EnvUserProfile  = "USERPROFILE"
)

// Well-known names inside the host's directory tree
const (
	// HostDirName is the host's folder name under the standard locations
	HostDirName = "Rainmeter"

	// SettingsFileName is the host's own settings file
	SettingsFileName = "Rainmeter.ini"

	// PluginsDirName is the plugin folder under the settings directory
	PluginsDirName = "Plugins"

	// LayoutsDirName is the layout folder under the settings directory
	LayoutsDirName = "Layouts"

	// SkinsDirName is the skins folder component under Documents
	SkinsDirName = "Skins"

	// ManifestFileName is the package manifest at the archive root
	ManifestFileName = "RMSKIN.ini"
)

// Paths resolves every location the installer reads or mutates
type Paths struct {
	settingsDir string
	appDir      string
	skinsDir    string
}

// New discovers the host installation from the environment. The standard
// Windows variables are consulted first; RMINSTALL_* overrides take
// priority and double as the hook for tests and portable installs.
func New() (*Paths, error) {
	p := &Paths{}

	if dir := os.Getenv(EnvSettingsDir); dir != "" {
		p.settingsDir = ExpandHome(dir)
	} else if appData := os.Getenv(EnvAppData); appData != "" {
		p.settingsDir = filepath.Join(appData, HostDirName)
	} else {
		p.settingsDir = filepath.Join(xdg.ConfigHome, HostDirName)
	}

	if dir := os.Getenv(EnvAppDir); dir != "" {
		p.appDir = ExpandHome(dir)
	} else if programFiles := os.Getenv(EnvProgramFiles); programFiles != "" {
		p.appDir = filepath.Join(programFiles, HostDirName)
	} else {
		p.appDir = filepath.Join(xdg.DataHome, HostDirName)
	}

	if dir := os.Getenv(EnvSkinsDir); dir != "" {
		p.skinsDir = ExpandHome(dir)
	} else {
		profile := os.Getenv(EnvUserProfile)
		if profile == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrNotFound, "cannot determine user profile directory")
			}
			profile = home
		}
		p.skinsDir = filepath.Join(profile, "Documents", HostDirName, SkinsDirName)
	}

	return p, nil
}

// SettingsDir returns the host's per-user settings directory
func (p *Paths) SettingsDir() string {
	return p.settingsDir
}

// SettingsFile returns the host's own settings file path
func (p *Paths) SettingsFile() string {
	return filepath.Join(p.settingsDir, SettingsFileName)
}

// PluginsDir returns the host's plugin directory
func (p *Paths) PluginsDir() string {
	return filepath.Join(p.settingsDir, PluginsDirName)
}

// LayoutsDir returns the host's layout directory
func (p *Paths) LayoutsDir() string {
	return filepath.Join(p.settingsDir, LayoutsDirName)
}

// AppDir returns the host's install directory
func (p *Paths) AppDir() string {
	return p.appDir
}

// HostExecutable returns the host binary path for the given executable name
func (p *Paths) HostExecutable(name string) string {
	return filepath.Join(p.appDir, name)
}

// DefaultSkinsDir returns the documented default skins location, used
// when the host settings file does not name one
func (p *Paths) DefaultSkinsDir() string {
	return p.skinsDir
}

// StagingDir returns a fresh, collision-resistant staging directory path
// for one install run. The directory itself is not created.
func StagingDir() string {
	return filepath.Join(os.TempDir(), "rminstall-"+uuid.NewString())
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the current user's home)
	return path
}
