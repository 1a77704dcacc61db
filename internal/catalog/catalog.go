// Package catalog reads the desired-package list supplied to a run.
//
// The catalog is an ordered stream of records, one per line:
//
//	name|epoch|version|release|architecture|repository
//
// Order is preserved; a malformed record is skipped and counted, never fatal.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/edge-curation/rpm-mirror/internal/rpm"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

const fieldCount = 6

// Catalog is the parsed desired-package list for one run.
type Catalog struct {
	Entries []rpm.Identity
	Skipped int // records that failed to parse
}

// Parse consumes the record stream from r. Empty lines and '#' comment lines
// are ignored silently; anything else that does not parse is logged, counted
// in Skipped and dropped.
func Parse(r io.Reader) (*Catalog, error) {
	log := logger.Logger()
	cat := &Catalog{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, err := parseRecord(line)
		if err != nil {
			log.Warnf("skipping catalog line %d: %v", lineNo, err)
			cat.Skipped++
			continue
		}
		cat.Entries = append(cat.Entries, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return cat, nil
}

func parseRecord(line string) (rpm.Identity, error) {
	fields := strings.Split(line, "|")
	if len(fields) != fieldCount {
		return rpm.Identity{}, fmt.Errorf("expected %d fields, got %d in %q", fieldCount, len(fields), line)
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}

	name, epochStr, version, release := fields[0], fields[1], fields[2], fields[3]
	arch, repo := fields[4], fields[5]
	if name == "" || version == "" || release == "" || arch == "" || repo == "" {
		return rpm.Identity{}, fmt.Errorf("empty field in %q", line)
	}

	epoch := 0
	if epochStr != "" && epochStr != "(none)" {
		e, err := strconv.Atoi(epochStr)
		if err != nil || e < 0 {
			return rpm.Identity{}, fmt.Errorf("bad epoch %q in %q", epochStr, line)
		}
		epoch = e
	}

	return rpm.Identity{
		Name: name,
		EVR:  rpm.NewEVR(epoch, version, release),
		Arch: arch,
		Repo: repo,
	}, nil
}
