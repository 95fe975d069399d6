package aptsource

import (
	"os"
	"strings"
)

// DefaultOSReleasePath is where the distro identifies itself.
const DefaultOSReleasePath = "/etc/os-release"

// fallbackSeries is used when the os-release file is missing or carries no
// codename, e.g. in minimal containers.
const fallbackSeries = "vera"

// DetectSeries reads the distro series codename from an os-release file.
func DetectSeries(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallbackSeries
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found || key != "VERSION_CODENAME" {
			continue
		}
		value = strings.Trim(value, `"`)
		if value != "" {
			return value
		}
	}
	return fallbackSeries
}
