// Package semver provides version parsing and the train-transition increment
// rules used when cutting releases. It wraps blang/semver so the rest of the
// codebase deals in a single immutable Version value type.
package semver

import (
	"fmt"

	blang "github.com/blang/semver/v4"

	"github.com/traincut/traincut/internal/errors"
)

// PrereleaseNext is the default pre-release label applied when a version with
// no label is incremented with IncrementPrerelease.
const PrereleaseNext = "next"

// PrereleaseRC is the label a feature-freeze branch adopts once it enters the
// release-candidate phase.
const PrereleaseRC = "rc"

// IncrementKind selects which component of a version is bumped.
type IncrementKind string

const (
	IncrementPatch      IncrementKind = "patch"
	IncrementMinor      IncrementKind = "minor"
	IncrementMajor      IncrementKind = "major"
	IncrementPrerelease IncrementKind = "prerelease"
)

// Version is an immutable semantic version. The zero value is not valid;
// construct values through Parse or MustParse.
type Version struct {
	v blang.Version
}

// Parse parses a semantic version string. Malformed input yields a
// *errors.VersionError wrapping the underlying parse failure.
func Parse(s string) (Version, error) {
	v, err := blang.Parse(s)
	if err != nil {
		return Version{}, errors.NewVersionError(fmt.Sprintf("malformed version %q", s), err)
	}
	return Version{v: v}, nil
}

// MustParse parses a version string and panics on failure. Intended for
// constants and test fixtures only.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version without a leading "v".
func (v Version) String() string { return v.v.String() }

// Major returns the major component.
func (v Version) Major() uint64 { return v.v.Major }

// Minor returns the minor component.
func (v Version) Minor() uint64 { return v.v.Minor }

// Patch returns the patch component.
func (v Version) Patch() uint64 { return v.v.Patch }

// Prerelease returns the pre-release label (for example "next" or "rc"), or
// the empty string for a stable version.
func (v Version) Prerelease() string {
	if len(v.v.Pre) == 0 {
		return ""
	}
	return v.v.Pre[0].VersionStr
}

// PrereleaseCounter returns the numeric counter of a "-<label>.N" pre-release.
// It returns 0 when the version has no counter.
func (v Version) PrereleaseCounter() uint64 {
	if len(v.v.Pre) < 2 {
		return 0
	}
	return v.v.Pre[1].VersionNum
}

// IsPrerelease reports whether the version carries any pre-release label.
func (v Version) IsPrerelease() bool { return len(v.v.Pre) > 0 }

// Compare returns -1, 0, or 1 comparing v against o with full semver
// precedence rules.
func (v Version) Compare(o Version) int { return v.v.Compare(o.v) }

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool { return v.v.LT(o.v) }

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool { return v.v.EQ(o.v) }

// Stable returns the version with any pre-release label dropped.
func (v Version) Stable() Version {
	out := v.v
	out.Pre = nil
	out.Build = nil
	return Version{v: out}
}

// WithPrerelease returns the version relabeled as "-<label>.<counter>".
func (v Version) WithPrerelease(label string, counter uint64) Version {
	out := v.v
	out.Pre = []blang.PRVersion{
		{VersionStr: label},
		{VersionNum: counter, IsNum: true},
	}
	out.Build = nil
	return Version{v: out}
}

// Increment computes the next version for a train transition.
//
// patch, minor and major follow standard semver increment rules and drop any
// pre-release label. prerelease applies the domain rule: a version with no
// label becomes "<version>-next.0"; a labeled version keeps its label and
// bumps only the counter.
func Increment(v Version, kind IncrementKind) (Version, error) {
	switch kind {
	case IncrementPatch:
		out := v.v
		out.Pre = nil
		out.Build = nil
		out.Patch++
		return Version{v: out}, nil
	case IncrementMinor:
		out := v.v
		out.Pre = nil
		out.Build = nil
		out.Minor++
		out.Patch = 0
		return Version{v: out}, nil
	case IncrementMajor:
		out := v.v
		out.Pre = nil
		out.Build = nil
		out.Major++
		out.Minor = 0
		out.Patch = 0
		return Version{v: out}, nil
	case IncrementPrerelease:
		if !v.IsPrerelease() {
			return v.WithPrerelease(PrereleaseNext, 0), nil
		}
		return v.WithPrerelease(v.Prerelease(), v.PrereleaseCounter()+1), nil
	default:
		return Version{}, errors.NewVersionError(fmt.Sprintf("unknown increment kind %q", kind), nil)
	}
}
