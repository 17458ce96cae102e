package catalog

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NormalizeVersion canonicalizes a module version string for display and
// comparison. Bannerlord versions carry a "v" or early-access "e" prefix
// and often a fourth build component ("v1.2.9.0"); both are tolerated.
// Strings that do not parse as a version are returned unchanged;
// version satisfiability stays a presence check, never a range match.
func NormalizeVersion(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	stripped := strings.TrimLeft(trimmed, "ve")

	// Drop a fourth build component before parsing
	if parts := strings.Split(stripped, "."); len(parts) == 4 {
		stripped = strings.Join(parts[:3], ".")
	}

	v, err := semver.NewVersion(stripped)
	if err != nil {
		return trimmed
	}
	return "v" + v.String()
}

// CompareVersions orders two normalized version strings.
// Returns -1, 0 or 1; unparseable versions compare as equal to everything,
// keeping ordering decisions out of the version layer.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(strings.TrimPrefix(NormalizeVersion(a), "v"))
	vb, errB := semver.NewVersion(strings.TrimPrefix(NormalizeVersion(b), "v"))
	if errA != nil || errB != nil {
		return 0
	}
	return va.Compare(vb)
}
