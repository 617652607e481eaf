// Package installer implements the package installation engine: it
// classifies an extracted skin package, decides the per-component
// install strategy, preserves user variable values across overwrites
// and coordinates the host restart.
//
// The pipeline is single-threaded and sequential, and it is not
// transactional: once extraction succeeds the plan runs to completion
// or aborts, and only the staging directory is cleaned up. The caller
// guarantees the host process is stopped before any host directory is
// mutated.
package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rminstall/rminstall/pkg/archive"
	"github.com/rminstall/rminstall/pkg/config"
	"github.com/rminstall/rminstall/pkg/errors"
	"github.com/rminstall/rminstall/pkg/fsutil"
	"github.com/rminstall/rminstall/pkg/host"
	"github.com/rminstall/rminstall/pkg/inifile"
	"github.com/rminstall/rminstall/pkg/logging"
	"github.com/rminstall/rminstall/pkg/paths"
)

// Options are the per-run installation switches
type Options struct {
	// KeepVariables preserves existing variable values on the merge
	// path; the replace path always preserves them
	KeepVariables bool

	// NoBackup suppresses the backup of replaced skin folders
	NoBackup bool
}

// Installer runs the installation pipeline
type Installer struct {
	cfg    *config.Config
	paths  *paths.Paths
	host   host.Controller
	logger zerolog.Logger
}

// New creates an Installer
func New(cfg *config.Config, p *paths.Paths, ctrl host.Controller) *Installer {
	return &Installer{
		cfg:    cfg,
		paths:  p,
		host:   ctrl,
		logger: logging.GetLogger("installer"),
	}
}

// Run installs the package at skinFile. Stages run in a fixed sequence
// and any failure aborts the remaining stages; the staging directory is
// removed at the end regardless of outcome.
func (in *Installer) Run(ctx context.Context, skinFile string, opts Options) (err error) {
	if info, statErr := os.Stat(skinFile); statErr != nil || info.IsDir() {
		return errors.New(errors.ErrNotFound, "skin package not found").
			WithDetail("path", skinFile)
	}

	if info, statErr := os.Stat(in.paths.AppDir()); statErr != nil || !info.IsDir() {
		return errors.New(errors.ErrNotFound, "host not installed or never run").
			WithDetail("path", in.paths.AppDir())
	}

	in.logger.Info().Msg("Reading host settings")
	settings, err := ReadSettings(in.paths)
	if err != nil {
		return err
	}

	plan := &Plan{
		SkinFile:   skinFile,
		StagingDir: paths.StagingDir(),
	}

	// cleanup always runs once, even after a stage failure; its own
	// failure is reported but never masks an earlier one
	defer func() {
		in.logger.Info().Msg("Cleaning up")
		if cleanErr := os.RemoveAll(plan.StagingDir); cleanErr != nil {
			in.logger.Error().Err(cleanErr).Str("path", plan.StagingDir).Msg("Cleanup failed")
			if err == nil {
				err = errors.Wrap(cleanErr, errors.ErrIOFailure, "cannot remove staging directory").
					WithDetail("path", plan.StagingDir)
			}
		}
	}()

	in.logger.Info().Str("staging", plan.StagingDir).Msg("Extracting skin package")
	plan.Inventory, err = archive.Extract(skinFile, plan.StagingDir, in.cfg.Plugins.Arch)
	if err != nil {
		return err
	}

	in.logger.Info().Msg("Reading package manifest")
	plan.Manifest, err = ReadManifest(plan.StagingDir)
	if err != nil {
		return err
	}

	in.logger.Info().Msg("Stopping host if active")
	plan.WasRunning, err = in.host.Stop(ctx)
	if err != nil {
		return err
	}

	in.logger.Info().Msg("Installing plugins")
	if err := in.installPlugins(plan); err != nil {
		return err
	}

	in.logger.Info().Msg("Installing layouts")
	if err := in.installLayouts(plan); err != nil {
		return err
	}

	if plan.Manifest.MergeSkins {
		if opts.KeepVariables {
			in.logger.Info().Msg("Preserving variables")
			if err := in.preserveVariables(plan, settings); err != nil {
				return err
			}
		}

		in.logger.Info().Msg("Merging skins")
		if err := in.installSkins(plan, settings); err != nil {
			return err
		}
	} else {
		// preservation is unconditional on the replace path,
		// independent of whether a backup is taken
		in.logger.Info().Msg("Preserving variables")
		if err := in.preserveVariables(plan, settings); err != nil {
			return err
		}

		if !opts.NoBackup {
			in.logger.Info().Msg("Backing up replaced skins")
			if err := in.backupSkins(plan, settings); err != nil {
				return err
			}
		}

		in.logger.Info().Msg("Installing skins")
		if err := in.installSkins(plan, settings); err != nil {
			return err
		}
	}

	in.logger.Info().Msg("Restarting host")
	in.restartHost(plan)

	return nil
}

// installPlugins copies the staged plugins of the supported
// architecture into the host's plugin directory. A package without
// plugins is not an error.
func (in *Installer) installPlugins(plan *Plan) error {
	src := filepath.Join(plan.StagingDir, archive.ComponentPlugins, in.cfg.Plugins.Arch)
	if !isDir(src) {
		in.logger.Debug().Msg("Package has no plugins")
		return nil
	}
	return fsutil.CopyDir(src, in.paths.PluginsDir())
}

// installLayouts merge-copies the staged layouts tree into the host's
// layouts directory
func (in *Installer) installLayouts(plan *Plan) error {
	src := filepath.Join(plan.StagingDir, archive.ComponentLayouts)
	if !isDir(src) {
		in.logger.Debug().Msg("Package has no layouts")
		return nil
	}
	return fsutil.CopyDir(src, in.paths.LayoutsDir())
}

// preserveVariables writes the Variables pairs of each declared
// variable file's live copy into the freshly staged copy, so user-set
// values survive being overwritten by the package's defaults. A
// variable file with no live copy is skipped: that is the first-install
// case, not an error.
func (in *Installer) preserveVariables(plan *Plan, settings *Settings) error {
	for _, varFile := range plan.Manifest.VariableFiles {
		rel := normalizeRel(varFile)
		oldFile := filepath.Join(settings.SkinsPath, rel)
		newFile := filepath.Join(plan.StagingDir, archive.ComponentSkins, rel)

		if !isFile(oldFile) {
			in.logger.Debug().Str("file", varFile).Msg("No prior copy to preserve from")
			continue
		}

		if !isFile(newFile) {
			// the manifest may declare a file the archive does not ship
			if err := os.MkdirAll(filepath.Dir(newFile), 0755); err != nil {
				continue
			}
			if err := os.WriteFile(newFile, nil, 0644); err != nil {
				continue
			}
		}

		keys, values, err := inifile.ReadVariablesSection(oldFile)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}

		if err := inifile.WriteVariables(newFile, keys, values); err != nil {
			return err
		}

		in.logger.Debug().Str("file", varFile).Int("variables", len(keys)).Msg("Variables preserved")
	}

	return nil
}

// backupSkins copies every skin folder about to be replaced into the
// backup subfolder of the skins tree, then removes the live folder
func (in *Installer) backupSkins(plan *Plan, settings *Settings) error {
	backupDir := filepath.Join(settings.SkinsPath, in.cfg.Backup.FolderName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot create backup directory").
			WithDetail("path", backupDir)
	}

	for _, skin := range plan.Inventory.Skins {
		live := filepath.Join(settings.SkinsPath, skin)
		if !isDir(live) {
			// first install of this skin, nothing to back up
			continue
		}

		if err := fsutil.CopyDir(live, filepath.Join(backupDir, skin)); err != nil {
			return err
		}
		if err := os.RemoveAll(live); err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "cannot remove replaced skin").
				WithDetail("path", live)
		}

		in.logger.Debug().Str("skin", skin).Msg("Skin backed up")
	}

	return nil
}

// installSkins merge-copies each staged skin folder into the host's
// skins directory; files are only added or overwritten, never removed
func (in *Installer) installSkins(plan *Plan, settings *Settings) error {
	for _, skin := range plan.Inventory.Skins {
		src := filepath.Join(plan.StagingDir, archive.ComponentSkins, skin)
		if err := fsutil.CopyDir(src, filepath.Join(settings.SkinsPath, skin)); err != nil {
			return err
		}
	}
	return nil
}

// restartHost relaunches the host and issues the manifest's activation
// command if one is declared. Restart problems are reported but do not
// fail the install: the files are already in place.
func (in *Installer) restartHost(plan *Plan) {
	if err := in.host.Start(); err != nil {
		in.logger.Error().Err(err).Msg("Could not restart host")
		return
	}

	if plan.Manifest.LoadType == "" || plan.Manifest.Load == "" {
		return
	}

	if err := in.host.Activate(plan.Manifest.LoadType, plan.Manifest.Load); err != nil {
		in.logger.Error().Err(err).Msg("Could not activate load target")
	}
}

// normalizeRel converts a manifest-relative path, which may use either
// separator, to the platform's form
func normalizeRel(rel string) string {
	return filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/"))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
