package vine

import (
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"
)

const (
	// DefaultVersion is used for graphs created without an explicit version.
	DefaultVersion = "1.0.0"

	// LegacyVersion marks graphs read from the pre-preamble grammar.
	LegacyVersion = "0.0.0"

	supportedMajor = "v1"
)

// versionPattern requires a full MAJOR.MINOR.PATCH; semver.IsValid alone
// accepts shorthands like "1.2".
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?$`)

// checkVersion reports whether version can head a versioned document.
func checkVersion(version string) error {
	if !versionPattern.MatchString(version) || !semver.IsValid("v"+version) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrInvalidVersion, version)
	}
	if major := semver.Major("v" + version); major != supportedMajor {
		return fmt.Errorf("%w: unsupported major version %s", ErrInvalidVersion, major[1:])
	}
	return nil
}

// IsLegacyVersion reports whether version selects the pre-preamble grammar.
func IsLegacyVersion(version string) bool {
	return semver.IsValid("v"+version) && semver.Major("v"+version) == "v0"
}

// Statuses returns the statuses valid for a graph of the given version.
func Statuses(version string) []Status {
	if IsLegacyVersion(version) {
		return []Status{
			StatusComplete,
			StatusStarted,
			StatusPlanning,
			StatusNotStarted,
			StatusBlocked,
		}
	}
	return []Status{
		StatusComplete,
		StatusStarted,
		StatusReviewing,
		StatusPlanning,
		StatusNotStarted,
		StatusBlocked,
	}
}

// ValidStatus reports whether s is valid for a graph of the given version.
func ValidStatus(version string, s Status) bool {
	for _, candidate := range Statuses(version) {
		if candidate == s {
			return true
		}
	}
	return false
}
