package version

// Version and GitCommit are injected at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
)
