package buildconfig

// Injected at build time via -ldflags "-X .../buildconfig.version=..."
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Version returns the build version string.
func Version() string {
	return version
}

// VersionInfo returns the full build identity reported by /metrics.
func VersionInfo() map[string]string {
	return map[string]string{
		"service": "percept",
		"version": version,
		"commit":  commit,
		"date":    buildDate,
	}
}
