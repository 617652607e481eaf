package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOverrides(t *testing.T) {
	t.Setenv(EnvSettingsDir, "/tmp/settings")
	t.Setenv(EnvAppDir, "/tmp/app")
	t.Setenv(EnvSkinsDir, "/tmp/skins")

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/settings", p.SettingsDir())
	assert.Equal(t, filepath.Join("/tmp/settings", "Rainmeter.ini"), p.SettingsFile())
	assert.Equal(t, filepath.Join("/tmp/settings", "Plugins"), p.PluginsDir())
	assert.Equal(t, filepath.Join("/tmp/settings", "Layouts"), p.LayoutsDir())
	assert.Equal(t, "/tmp/app", p.AppDir())
	assert.Equal(t, filepath.Join("/tmp/app", "Rainmeter.exe"), p.HostExecutable("Rainmeter.exe"))
	assert.Equal(t, "/tmp/skins", p.DefaultSkinsDir())
}

func TestNewWindowsEnv(t *testing.T) {
	t.Setenv(EnvSettingsDir, "")
	t.Setenv(EnvAppDir, "")
	t.Setenv(EnvSkinsDir, "")
	t.Setenv(EnvAppData, filepath.Join("/tmp", "AppData", "Roaming"))
	t.Setenv(EnvProgramFiles, filepath.Join("/tmp", "Program Files"))
	t.Setenv(EnvUserProfile, filepath.Join("/tmp", "Users", "me"))

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/tmp", "AppData", "Roaming", "Rainmeter"), p.SettingsDir())
	assert.Equal(t, filepath.Join("/tmp", "Program Files", "Rainmeter"), p.AppDir())
	assert.Equal(t, filepath.Join("/tmp", "Users", "me", "Documents", "Rainmeter", "Skins"), p.DefaultSkinsDir())
}

func TestStagingDirIsFreshPerRun(t *testing.T) {
	a := StagingDir()
	b := StagingDir()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(filepath.Base(a), "rminstall-"))
	assert.Equal(t, os.TempDir(), filepath.Dir(a))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/skins", filepath.Join(home, "skins")},
		{"~other/skins", "~other/skins"},
		{"/abs/path", "/abs/path"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandHome(tt.in))
	}
}
