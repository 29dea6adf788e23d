package semver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// ErrInvalid is returned (wrapped) when a version or range cannot be parsed.
var ErrInvalid = errors.New("semver: invalid input")

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3 that keeps
// the string the version was parsed from, so registry keys round-trip
// unchanged.
type Version struct {
	v   *mm.Version
	raw string
}

// Constraint is a semantic version range.
//
// Examples:
// - "^1.2.0"
// - ">=1.2.0 <2.0.0"
type Constraint struct {
	c *mm.Constraints

	// base is set for ranges built by Caret and scopes pre-releases to
	// base's major.minor.patch.
	base *mm.Version
}

// ParseVersion parses a full major.minor.patch version with optional
// pre-release and build metadata. A leading "v" or "=" is tolerated;
// partial versions such as "1.3" are rejected.
func ParseVersion(raw string) (Version, error) {
	v, err := mm.StrictNewVersion(normalize(raw))
	if err != nil {
		return Version{}, fmt.Errorf("%w: parse version %q: %v", ErrInvalid, raw, err)
	}
	return Version{v: v, raw: raw}, nil
}

// ParseLenient parses raw, filling in missing minor and patch numbers.
// Use it for version strings that are not semver, like "go1.22".
func ParseLenient(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("%w: parse version %q: %v", ErrInvalid, raw, err)
	}
	return Version{v: v, raw: raw}, nil
}

// MustParseVersion is like ParseVersion but panics on invalid input.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: parse constraint %q: %v", ErrInvalid, raw, err)
	}
	return Constraint{c: c}, nil
}

// Caret returns the compatible-with range anchored at base ("^base").
//
// A pre-release only satisfies it when base is a pre-release of the same
// major.minor.patch.
func Caret(base string) (Constraint, error) {
	b, err := ParseVersion(base)
	if err != nil {
		return Constraint{}, err
	}
	c, err := ParseConstraint("^" + b.v.String())
	if err != nil {
		return Constraint{}, err
	}
	c.base = b.v
	return c, nil
}

func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "=")
	return strings.TrimPrefix(s, "v")
}

// String returns the version exactly as it was written.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	if v.raw != "" {
		return v.raw
	}
	return v.v.Original()
}

func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

func (v Version) Prerelease() string {
	if v.v == nil {
		return ""
	}
	return v.v.Prerelease()
}

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	if c.base != nil && v.v.Prerelease() != "" && !samePatch(v.v, c.base) {
		return false
	}
	return c.c.Check(v.v)
}

// samePatch reports whether base is a pre-release sharing v's
// major.minor.patch.
func samePatch(v, base *mm.Version) bool {
	return base.Prerelease() != "" &&
		v.Major() == base.Major() &&
		v.Minor() == base.Minor() &&
		v.Patch() == base.Patch()
}

// Compare compares a and b by full semver precedence, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// GreaterThan reports whether a > b. Unparseable input is never greater.
func GreaterThan(a, b string) bool {
	va, err := ParseVersion(a)
	if err != nil {
		return false
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return false
	}
	return Compare(va, vb) > 0
}

// SortDescending orders versions from highest to lowest in place.
//
// Versions with equal precedence (differing only in build metadata) are
// ordered by their string form, shortest spelling first.
func SortDescending(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		if c := Compare(versions[i], versions[j]); c != 0 {
			return c > 0
		}
		return versions[i].String() < versions[j].String()
	})
}

// FilterDescending keeps the raw versions satisfying c, drops unparseable
// and duplicate entries, and returns them highest first. Of several
// versions with equal precedence only the first in sort order is kept.
func FilterDescending(c Constraint, raw []string) []string {
	return collect(raw, func(v Version) bool { return Satisfies(v, c) })
}

// Descending returns every parseable version in raw, deduplicated and
// highest first.
func Descending(raw []string) []string {
	return collect(raw, func(Version) bool { return true })
}

func collect(raw []string, keep func(Version) bool) []string {
	seen := make(map[string]struct{}, len(raw))
	matched := make([]Version, 0, len(raw))
	for _, r := range raw {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}

		v, err := ParseVersion(r)
		if err != nil {
			continue
		}
		if keep(v) {
			matched = append(matched, v)
		}
	}

	SortDescending(matched)

	// Keep one entry per precedence so the result is strictly descending.
	out := make([]string, 0, len(matched))
	for i, v := range matched {
		if i > 0 && Compare(matched[i-1], v) == 0 {
			continue
		}
		out = append(out, v.String())
	}
	return out
}
