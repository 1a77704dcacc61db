// Package rpm models RPM package identity (NEVRA) and version ordering.
package rpm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadFilename is returned when an artifact filename does not follow the
// <name>-<version>-<release>.<arch>.rpm convention.
var ErrBadFilename = errors.New("malformed rpm filename")

// ErrBadEVR is returned when an epoch:version-release string cannot be parsed.
var ErrBadEVR = errors.New("malformed epoch:version-release")

// EVR is the version triple of a package. The version is split into its
// dot-delimited segments once at construction so comparisons never re-parse.
type EVR struct {
	Epoch   int
	Version string
	Release string

	segments []string
}

// NewEVR builds an EVR from already-separated fields. A negative epoch is
// treated as the default epoch 0.
func NewEVR(epoch int, version, release string) EVR {
	if epoch < 0 {
		epoch = 0
	}
	return EVR{
		Epoch:    epoch,
		Version:  version,
		Release:  release,
		segments: strings.Split(version, "."),
	}
}

// ParseEVR parses "[epoch:]version-release". The epoch defaults to 0 when
// absent; the release is everything after the last dash.
func ParseEVR(s string) (EVR, error) {
	epoch := 0
	rest := s
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		e, err := strconv.Atoi(rest[:i])
		if err != nil || e < 0 {
			return EVR{}, fmt.Errorf("%w: bad epoch in %q", ErrBadEVR, s)
		}
		epoch = e
		rest = rest[i+1:]
	}
	dash := strings.LastIndexByte(rest, '-')
	if dash <= 0 || dash == len(rest)-1 {
		return EVR{}, fmt.Errorf("%w: %q", ErrBadEVR, s)
	}
	return NewEVR(epoch, rest[:dash], rest[dash+1:]), nil
}

// String renders the EVR, omitting a zero epoch.
func (e EVR) String() string {
	if e.Epoch > 0 {
		return fmt.Sprintf("%d:%s-%s", e.Epoch, e.Version, e.Release)
	}
	return e.Version + "-" + e.Release
}

// Identity is one catalog or on-disk package: NEVRA plus the owning repository.
// Immutable once constructed. Two identities are the same package when name,
// arch and repository match, whatever their versions.
type Identity struct {
	Name string
	EVR
	Arch string
	Repo string
}

// Key is the inventory lookup key: a package is identified inside one
// repository by name and architecture.
func (id Identity) Key() string {
	return id.Name + "." + id.Arch
}

// Filename returns the artifact filename for this identity. The epoch is
// never part of the filename.
func (id Identity) Filename() string {
	return fmt.Sprintf("%s-%s-%s.%s.rpm", id.Name, id.Version, id.Release, id.Arch)
}

// String renders name-EVR.arch for diagnostics.
func (id Identity) String() string {
	return fmt.Sprintf("%s-%s.%s", id.Name, id.EVR.String(), id.Arch)
}

// ParseFilename parses "<name>-<version>-<release>.<arch>.rpm" into an
// Identity with epoch 0 (filenames cannot carry an epoch). The name may
// itself contain dashes; version and release are the last two dash-separated
// fields.
func ParseFilename(filename string) (Identity, error) {
	base, ok := strings.CutSuffix(filename, ".rpm")
	if !ok {
		return Identity{}, fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}

	archDot := strings.LastIndexByte(base, '.')
	if archDot <= 0 || archDot == len(base)-1 {
		return Identity{}, fmt.Errorf("%w: no architecture in %q", ErrBadFilename, filename)
	}
	arch := base[archDot+1:]
	nvr := base[:archDot]

	relDash := strings.LastIndexByte(nvr, '-')
	if relDash <= 0 {
		return Identity{}, fmt.Errorf("%w: no release in %q", ErrBadFilename, filename)
	}
	release := nvr[relDash+1:]
	nv := nvr[:relDash]

	verDash := strings.LastIndexByte(nv, '-')
	if verDash <= 0 || verDash == len(nv)-1 {
		return Identity{}, fmt.Errorf("%w: no version in %q", ErrBadFilename, filename)
	}
	version := nv[verDash+1:]
	name := nv[:verDash]

	if release == "" || version == "" {
		return Identity{}, fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}

	return Identity{
		Name: name,
		EVR:  NewEVR(0, version, release),
		Arch: arch,
	}, nil
}
