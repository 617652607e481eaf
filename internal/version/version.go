package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/rminstall/rminstall/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/rminstall/rminstall/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/rminstall/rminstall/internal/version.Date={{.Date}}
)
