package version

// will be replaced with the release version when building with -ldflags
var version = "development"

// Version returns the updatectl version.
func Version() string {
	return version
}
