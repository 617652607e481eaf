package installer

import (
	"os"

	"github.com/rminstall/rminstall/pkg/errors"
	"github.com/rminstall/rminstall/pkg/inifile"
	"github.com/rminstall/rminstall/pkg/logging"
	"github.com/rminstall/rminstall/pkg/paths"
)

// Settings is the host configuration consulted for one install run.
// It is read once and treated as read-only afterwards.
type Settings struct {
	// SkinsPath is the root of the host's skins tree
	SkinsPath string

	// AppPath is the host's install directory
	AppPath string

	// SettingsPath is the host's per-user settings directory
	SettingsPath string
}

// ReadSettings reads the host's own settings file. SkinPath falls back
// to the documented default under the user profile when absent, and the
// directory is created if missing.
func ReadSettings(p *paths.Paths) (*Settings, error) {
	logger := logging.GetLogger("installer.settings")

	f, err := inifile.Load(p.SettingsFile())
	if err != nil {
		return nil, err
	}

	s := &Settings{
		AppPath:      p.AppDir(),
		SettingsPath: p.SettingsDir(),
	}

	s.SkinsPath = f.Section("Rainmeter").Key("SkinPath").String()
	if s.SkinsPath == "" {
		s.SkinsPath = p.DefaultSkinsDir()
		logger.Debug().Str("path", s.SkinsPath).Msg("SkinPath not set, using default")
	}

	if info, err := os.Stat(s.SkinsPath); err != nil || !info.IsDir() {
		if err := os.MkdirAll(s.SkinsPath, 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrIOFailure, "skins folder not found and could not be created").
				WithDetail("path", s.SkinsPath)
		}
		logger.Info().Str("path", s.SkinsPath).Msg("Created skins folder")
	}

	return s, nil
}
