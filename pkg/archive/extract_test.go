package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rminstall/rminstall/pkg/errors"
	"github.com/rminstall/rminstall/pkg/paths"
)

// ManifestName and the manifest reader's filename must stay the same
// constant, or extraction could accept a package the reader cannot find.
func TestManifestNameMatchesReaderFilename(t *testing.T) {
	assert.Equal(t, paths.ManifestFileName, ManifestName)
}

// buildPackage writes a zip with the given name->content entries and
// returns its path
func buildPackage(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.rmskin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func TestExtract(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"RMSKIN.ini":                     "[rmskin]\nLoadType=Skin\n",
		"Skins/Demo/Demo.ini":            "[Variables]\nA=1\n",
		"Skins/Demo/img/bg.png":          "png",
		"Skins/Clock/Clock.ini":          "[Variables]\n",
		"Layouts/MyLayout/Rainmeter.ini": "layout",
		"Plugins/64bit/Foo.dll":          "bin64",
		"Plugins/32bit/Foo.dll":          "bin32",
	})
	dest := filepath.Join(t.TempDir(), "staging")

	inv, err := Extract(pkg, dest, "64bit")
	require.NoError(t, err)

	assert.Equal(t, []string{"Clock", "Demo"}, inv.Skins)
	assert.Equal(t, []string{"MyLayout"}, inv.Layouts)
	assert.Equal(t, []string{"Foo.dll"}, inv.Plugins)

	// 64bit plugin extracted, 32bit skipped entirely
	assert.FileExists(t, filepath.Join(dest, "Plugins", "64bit", "Foo.dll"))
	assert.NoFileExists(t, filepath.Join(dest, "Plugins", "32bit", "Foo.dll"))
	assert.FileExists(t, filepath.Join(dest, "Skins", "Demo", "img", "bg.png"))
	assert.FileExists(t, filepath.Join(dest, "RMSKIN.ini"))
}

func TestExtractDeduplicatesNames(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"RMSKIN.ini":           "[rmskin]\n",
		"Skins/Demo/a.ini":     "a",
		"Skins/Demo/b.ini":     "b",
		"Skins/Demo/sub/c.ini": "c",
		"Layouts/L/x.ini":      "x",
		"Layouts/L/y.ini":      "y",
	})
	dest := filepath.Join(t.TempDir(), "staging")

	inv, err := Extract(pkg, dest, "64bit")
	require.NoError(t, err)
	assert.Equal(t, []string{"Demo"}, inv.Skins)
	assert.Equal(t, []string{"L"}, inv.Layouts)
}

func TestExtractManifestMissing(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"Skins/Demo/Demo.ini": "[Variables]\n",
	})
	dest := filepath.Join(t.TempDir(), "staging")

	_, err := Extract(pkg, dest, "64bit")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestMissing))
}

func TestExtractBadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.rmskin")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := Extract(path, filepath.Join(t.TempDir(), "staging"), "64bit")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveRead))
}

func TestExtractRemovesStaleStaging(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"RMSKIN.ini": "[rmskin]\n",
	})
	dest := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(dest, 0755))
	stale := filepath.Join(dest, "leftover.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	_, err := Extract(pkg, dest, "64bit")
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"RMSKIN.ini":     "[rmskin]\n",
		"../outside.txt": "escape",
	})
	dest := filepath.Join(t.TempDir(), "staging")

	_, err := Extract(pkg, dest, "64bit")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveRead))
}
