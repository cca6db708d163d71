// Package misc keeps build time information.
package misc

// Set with -ldflags "-X fontprune/misc.version=... -X fontprune/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "fontprune"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
