package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rminstall/rminstall/pkg/errors"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "RMSKIN.ini"), []byte(content), 0644))
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[rmskin]
LoadType=Skin
Load=Demo\Demo.ini
VariableFiles=Demo\@Resources\Variables.inc | Demo\Settings.inc
MergeSkins=1
`)

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "Skin", m.LoadType)
	assert.Equal(t, `Demo\Demo.ini`, m.Load)
	assert.Equal(t, []string{`Demo\@Resources\Variables.inc`, `Demo\Settings.inc`}, m.VariableFiles)
	assert.True(t, m.MergeSkins)
}

func TestReadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[rmskin]\n")

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Empty(t, m.LoadType)
	assert.Empty(t, m.Load)
	assert.Empty(t, m.VariableFiles)
	assert.False(t, m.MergeSkins)
}

func TestReadManifestMergeSkinsRequiresOne(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[rmskin]\nMergeSkins=true\n")

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.False(t, m.MergeSkins)
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigNotFound))
}
