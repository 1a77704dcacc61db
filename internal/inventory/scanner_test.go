package inventory_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/edge-curation/rpm-mirror/internal/inventory"
)

func writeFiles(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fs, dir+"/"+name, []byte("stub"), 0o644))
	}
}

func TestScanBuildsLookup(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/mirror/baseos",
		"bash-5.2.26-3.el9.x86_64.rpm",
		"openssl-3.2.1-1.el9.x86_64.rpm",
		"tzdata-2024a-1.noarch.rpm",
	)

	inv, err := inventory.NewScanner(fs, false).Scan("baseos", "/mirror/baseos")
	require.NoError(t, err)
	require.Equal(t, 3, inv.Len())
	require.Zero(t, inv.Malformed)

	a, ok := inv.Lookup("bash", "x86_64")
	require.True(t, ok)
	require.Equal(t, "5.2.26", a.Version)
	require.Equal(t, "3.el9", a.Release)
	require.Equal(t, "baseos", a.Repo)
	require.Equal(t, "/mirror/baseos/bash-5.2.26-3.el9.x86_64.rpm", a.Path)

	_, ok = inv.Lookup("bash", "aarch64")
	require.False(t, ok, "architecture mismatch must not match")

	_, ok = inv.Lookup("nosuch", "x86_64")
	require.False(t, ok)
}

func TestScanSkipsMalformedAndForeignFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/mirror/baseos",
		"bash-5.2.26-3.el9.x86_64.rpm",
		"README.txt",
		"broken.rpm",
	)
	require.NoError(t, fs.MkdirAll("/mirror/baseos/repodata", 0o755))

	inv, err := inventory.NewScanner(fs, false).Scan("baseos", "/mirror/baseos")
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	require.Equal(t, 1, inv.Malformed, "broken.rpm counts as malformed, README.txt is ignored")
}

func TestScanMissingDirectoryIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	inv, err := inventory.NewScanner(fs, false).Scan("baseos", "/mirror/missing")
	require.NoError(t, err)
	require.Zero(t, inv.Len())
}

func TestScanDeepScanToleratesBadHeaders(t *testing.T) {
	// Stub payloads are not real RPMs; deep scan must fall back to the
	// filename identity instead of failing the scan.
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/mirror/baseos", "bash-5.2.26-3.el9.x86_64.rpm")

	inv, err := inventory.NewScanner(fs, true).Scan("baseos", "/mirror/baseos")
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())

	a, ok := inv.Lookup("bash", "x86_64")
	require.True(t, ok)
	require.Zero(t, a.Epoch)
}
