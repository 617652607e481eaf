package installer

import (
	"path/filepath"
	"strings"

	"github.com/rminstall/rminstall/pkg/inifile"
	"github.com/rminstall/rminstall/pkg/paths"
)

// ManifestSection is the section of the package manifest the installer
// reads
const ManifestSection = "rmskin"

// VariableFilesDelimiter separates entries of the VariableFiles list
const VariableFilesDelimiter = " | "

// Manifest is the package-level configuration parsed from the manifest
// file at the archive root. It is read once per run and read-only
// thereafter.
type Manifest struct {
	// LoadType is "Skin", "Layout" or empty
	LoadType string

	// Load is the skin path or layout name to activate after install
	Load string

	// VariableFiles lists skin-relative configuration files whose
	// Variables sections must survive an overwrite
	VariableFiles []string

	// MergeSkins selects the merge path instead of backup-and-replace
	MergeSkins bool
}

// ReadManifest parses the manifest from an extracted package in
// stagingDir
func ReadManifest(stagingDir string) (*Manifest, error) {
	f, err := inifile.Load(filepath.Join(stagingDir, paths.ManifestFileName))
	if err != nil {
		return nil, err
	}

	section := f.Section(ManifestSection)
	m := &Manifest{
		LoadType:   section.Key("LoadType").String(),
		Load:       section.Key("Load").String(),
		MergeSkins: section.Key("MergeSkins").String() == "1",
	}

	if raw := section.Key("VariableFiles").String(); raw != "" {
		m.VariableFiles = strings.Split(raw, VariableFilesDelimiter)
	}

	return m, nil
}
