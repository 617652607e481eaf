package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rminstall/rminstall/pkg/errors"
	"github.com/rminstall/rminstall/pkg/logging"
	"github.com/rminstall/rminstall/pkg/paths"
)

// PluginExt is the platform's native binary extension for plugins
const PluginExt = "dll"

// ManifestName is the manifest file expected at the archive root
const ManifestName = paths.ManifestFileName

// Inventory is the classification result of one extracted package:
// sorted, duplicate-free component name sets.
type Inventory struct {
	Skins   []string
	Layouts []string
	Plugins []string
}

// Extract unpacks the package at zipPath into destDir and classifies
// every entry. Plugin entries are only extracted for the requested
// architecture; other plugin entries are skipped without error. It
// fails with ErrManifestMissing if no manifest file is found among the
// archive entries.
func Extract(zipPath, destDir, pluginArch string) (*Inventory, error) {
	logger := logging.GetLogger("archive")

	// a stale staging dir from an aborted run is removed first
	if info, err := os.Stat(destDir); err == nil && info.IsDir() {
		if err := os.RemoveAll(destDir); err != nil {
			logger.Warn().Err(err).Str("path", destDir).Msg("Could not remove stale staging directory")
		}
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "cannot create staging directory").
			WithDetail("path", destDir)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveRead, "cannot open skin package").
			WithDetail("path", zipPath)
	}
	defer func() { _ = reader.Close() }()

	inv := &Inventory{}
	foundManifest := false

	for _, file := range reader.File {
		entry := ParseEntry(file.Name)

		switch entry.Component {
		case ComponentSkins:
			if entry.Name != "" {
				inv.Skins = append(inv.Skins, entry.Name)
			}
		case ComponentLayouts:
			if entry.Name != "" {
				inv.Layouts = append(inv.Layouts, entry.Name)
			}
		case ComponentPlugins:
			if entry.Name == pluginArch && entry.Ext == PluginExt {
				inv.Plugins = append(inv.Plugins, baseName(file.Name))
			} else {
				// other architectures are intentionally not installed
				logger.Debug().Str("entry", file.Name).Msg("Skipping plugin for unsupported architecture")
				continue
			}
		}

		if entry.Name == ManifestName {
			foundManifest = true
		}

		if err := extractFile(file, destDir); err != nil {
			return nil, err
		}
	}

	if !foundManifest {
		return nil, errors.New(errors.ErrManifestMissing, "no "+ManifestName+" found in skin package").
			WithDetail("path", zipPath)
	}

	inv.Skins = sortUnique(inv.Skins)
	inv.Layouts = sortUnique(inv.Layouts)
	inv.Plugins = sortUnique(inv.Plugins)

	logger.Info().
		Int("skins", len(inv.Skins)).
		Int("layouts", len(inv.Layouts)).
		Int("plugins", len(inv.Plugins)).
		Msg("Package extracted")

	return inv, nil
}

// extractFile writes one archive member under destDir, refusing paths
// that would escape it
func extractFile(file *zip.File, destDir string) error {
	rel := filepath.FromSlash(normalize(file.Name))
	target := filepath.Join(destDir, rel)

	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
		return errors.New(errors.ErrArchiveRead, "archive entry escapes staging directory").
			WithDetail("entry", file.Name)
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0755); err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "cannot create directory").
				WithDetail("path", target)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot create directory").
			WithDetail("path", filepath.Dir(target))
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, errors.ErrArchiveRead, "cannot read archive entry").
			WithDetail("entry", file.Name)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(target)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot create file").
			WithDetail("path", target)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot extract file").
			WithDetail("path", target)
	}

	return nil
}

func baseName(entryPath string) string {
	segments := strings.Split(normalize(entryPath), "/")
	return segments[len(segments)-1]
}

func sortUnique(names []string) []string {
	sort.Strings(names)
	out := names[:0]
	for i, name := range names {
		if i == 0 || name != names[i-1] {
			out = append(out, name)
		}
	}
	return out
}
