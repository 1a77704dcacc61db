package rpm

import (
	"strconv"
	"strings"
)

// IsNewer reports whether e is strictly newer than reference.
// Ordering rules, in priority order: epoch decides when unequal; then the
// version is compared segment by segment with the shorter side padded with
// implicit zero segments; finally the release is compared by its leading
// digit run only, so distro suffixes like ".el9" never influence the result.
// IsNewer(x, x) is always false.
func (e EVR) IsNewer(reference EVR) bool {
	if e.Epoch != reference.Epoch {
		return e.Epoch > reference.Epoch
	}
	if c := compareSegments(e.versionSegments(), reference.versionSegments()); c != 0 {
		return c > 0
	}
	return releaseNumber(e.Release) > releaseNumber(reference.Release)
}

// IsNewer reports whether candidate is strictly newer than reference.
func IsNewer(candidate, reference EVR) bool {
	return candidate.IsNewer(reference)
}

func (e EVR) versionSegments() []string {
	if e.segments == nil {
		// Zero-value EVR constructed without NewEVR; split on demand.
		return strings.Split(e.Version, ".")
	}
	return e.segments
}

// compareSegments compares two segment sequences of possibly different
// length, treating missing trailing segments as "0". A segment pair is
// compared numerically when both sides are all digits, as opaque strings
// otherwise, so "10" sorts above "9" but "rc1" stays lexical.
func compareSegments(a, b []string) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		as, bs := "0", "0"
		if i < len(a) {
			as = a[i]
		}
		if i < len(b) {
			bs = b[i]
		}
		if c := compareSegment(as, bs); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b string) int {
	if isAllDigits(a) && isAllDigits(b) {
		av, _ := strconv.Atoi(a)
		bv, _ := strconv.Atoi(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// releaseNumber extracts the longest leading digit run of a release string.
// An empty run counts as 0; anything after it (alphabetic qualifiers, distro
// tags) is deliberately ignored.
func releaseNumber(release string) int {
	end := 0
	for end < len(release) && release[end] >= '0' && release[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(release[:end])
	if err != nil {
		return 0
	}
	return n
}
