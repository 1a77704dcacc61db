// Package repodata reads existing repository index metadata. It is used for
// reporting only; index generation itself belongs to createrepo_c.
package repodata

import (
	"encoding/xml"
	"fmt"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// RepoMd models repodata/repomd.xml.
type RepoMd struct {
	Revision string       `xml:"revision"`
	Data     []RepoMdData `xml:"data"`
}

// RepoMdData is one <data> block of repomd.xml.
type RepoMdData struct {
	Type     string         `xml:"type,attr"`
	Location RepoMdLocation `xml:"location"`
}

// RepoMdLocation is the href of a metadata file, relative to the repo root.
type RepoMdLocation struct {
	Href string `xml:"href,attr"`
}

// primaryMetadata is the outer element of primary.xml; only the package
// count attribute is read.
type primaryMetadata struct {
	PackagesCount int `xml:"packages,attr"`
}

// Stat summarizes one repository's current index metadata.
type Stat struct {
	Revision string
	Packages int
}

// Read parses repomd.xml under repoPath and follows the primary location to
// report the indexed package count. A repository without repodata yields an
// error; callers treat that as "not yet indexed".
func Read(fs afero.Fs, repoPath string) (Stat, error) {
	var stat Stat

	repomdPath := filepath.Join(repoPath, "repodata", "repomd.xml")
	data, err := afero.ReadFile(fs, repomdPath)
	if err != nil {
		return stat, fmt.Errorf("reading %s: %w", repomdPath, err)
	}

	var md RepoMd
	if err := xml.Unmarshal(data, &md); err != nil {
		return stat, fmt.Errorf("parsing %s: %w", repomdPath, err)
	}
	stat.Revision = md.Revision

	href := ""
	for _, d := range md.Data {
		if d.Type == "primary" {
			href = d.Location.Href
			break
		}
	}
	if href == "" {
		return stat, fmt.Errorf("no primary location in %s", repomdPath)
	}

	count, err := readPrimaryCount(fs, filepath.Join(repoPath, filepath.FromSlash(href)))
	if err != nil {
		return stat, err
	}
	stat.Packages = count
	return stat, nil
}

// readPrimaryCount opens primary.xml.gz and decodes just the outer metadata
// element for its package count.
func readPrimaryCount(fs afero.Fs, path string) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer gz.Close()

	var md primaryMetadata
	if err := xml.NewDecoder(gz).Decode(&md); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return md.PackagesCount, nil
}
