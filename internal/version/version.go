// Package version parses, compares, and bumps the project version marker.
// The marker is a single line of the form:
//
//	__version__: v<major>.<minor>.<patch>[-<suffix>]
//
// The suffix carries pre-release meaning (a suffixed version sorts before the
// same version without one). The auto-bump pipeline uses a 7-character commit
// hash as the suffix to mark in-between development states.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MarkerKey is the key of the version marker line.
const MarkerKey = "__version__"

// Version is a parsed semantic version with an optional suffix.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

var versionPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?$`)

// hashPattern matches the dev-marker suffix produced by auto-bump.
var hashPattern = regexp.MustCompile(`^[0-9a-f]{7}$`)

// Parse parses a version string such as "v1.2.3" or "1.2.3-a1b2c3d".
// The leading "v" is optional; the canonical form includes it.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("malformed version %q: want v<major>.<minor>.<patch>[-<suffix>]", s)
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, fmt.Errorf("malformed major in %q: %w", s, err)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, fmt.Errorf("malformed minor in %q: %w", s, err)
	}
	patch, err := strconv.Atoi(m[3])
	if err != nil {
		return Version{}, fmt.Errorf("malformed patch in %q: %w", s, err)
	}

	return Version{Major: major, Minor: minor, Patch: patch, Suffix: m[4]}, nil
}

// String returns the canonical form: "v1.2.3" or "v1.2.3-suffix".
func (v Version) String() string {
	if v.Suffix == "" {
		return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("v%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Suffix)
}

// Level selects which field Bump increments.
type Level string

const (
	LevelMajor Level = "major"
	LevelMinor Level = "minor"
	LevelPatch Level = "patch"
)

// ParseLevel validates a user-supplied bump level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelMajor:
		return LevelMajor, nil
	case LevelMinor:
		return LevelMinor, nil
	case LevelPatch:
		return LevelPatch, nil
	}
	return "", fmt.Errorf("unknown bump level %q: want major, minor, or patch", s)
}

// Bump returns a copy with the given field incremented, lower fields zeroed,
// and the suffix cleared. Bumping always produces a clean release version.
func (v Version) Bump(level Level) Version {
	switch level {
	case LevelMajor:
		return Version{Major: v.Major + 1}
	case LevelMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// WithSuffix returns a copy carrying the given suffix.
func (v Version) WithSuffix(suffix string) Version {
	v.Suffix = suffix
	return v
}

// IsDevMark reports whether the suffix looks like a 7-hex-char commit hash,
// i.e. the marker was produced by an auto-bump rather than a tagged release.
func (v Version) IsDevMark() bool {
	return hashPattern.MatchString(v.Suffix)
}

// Compare returns -1, 0, or 1 ordering a against b by semver precedence.
// A suffixed version is a pre-release of the bare version and sorts first.
func Compare(a, b Version) int {
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareInt(a.Patch, b.Patch); c != 0 {
		return c
	}
	switch {
	case a.Suffix == b.Suffix:
		return 0
	case a.Suffix == "":
		return 1
	case b.Suffix == "":
		return -1
	case a.Suffix < b.Suffix:
		return -1
	default:
		return 1
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
