package main

// Build information, overridden at build time via -ldflags.
var (
	// Version is the application version.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
