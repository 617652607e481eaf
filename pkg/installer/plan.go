package installer

import (
	"github.com/rminstall/rminstall/pkg/archive"
)

// Plan is the accumulated, run-scoped state of one installation. It is
// threaded explicitly through every pipeline stage; there is no ambient
// state.
type Plan struct {
	// SkinFile is the package archive being installed
	SkinFile string

	// StagingDir is the fresh temp directory the archive is unpacked
	// into; it is removed at the end of the run regardless of outcome
	StagingDir string

	// Inventory holds the sorted, duplicate-free component name sets so
	// every name is processed exactly once
	Inventory *archive.Inventory

	// Manifest is the package manifest, read once after extraction
	Manifest *Manifest

	// WasRunning records whether the host had to be stopped
	WasRunning bool
}
