package repodata_test

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/edge-curation/rpm-mirror/internal/repodata"
)

const repomdXML = `<?xml version="1.0" encoding="UTF-8"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo">
  <revision>1719246000</revision>
  <data type="filelists">
    <location href="repodata/filelists.xml.gz"/>
  </data>
  <data type="primary">
    <location href="repodata/primary.xml.gz"/>
  </data>
</repomd>`

const primaryXML = `<?xml version="1.0" encoding="UTF-8"?>
<metadata xmlns="http://linux.duke.edu/metadata/common" packages="42">
</metadata>`

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/mirror/baseos/repodata", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/mirror/baseos/repodata/repomd.xml", []byte(repomdXML), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/mirror/baseos/repodata/primary.xml.gz", gzipBytes(t, primaryXML), 0o644))

	stat, err := repodata.Read(fs, "/mirror/baseos")
	require.NoError(t, err)
	require.Equal(t, "1719246000", stat.Revision)
	require.Equal(t, 42, stat.Packages)
}

func TestReadMissingRepodata(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := repodata.Read(fs, "/mirror/empty")
	require.Error(t, err)
}

func TestReadMissingPrimary(t *testing.T) {
	noPrimary := `<repomd><revision>1</revision><data type="other"><location href="repodata/other.xml.gz"/></data></repomd>`
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mirror/r/repodata/repomd.xml", []byte(noPrimary), 0o644))

	_, err := repodata.Read(fs, "/mirror/r")
	require.ErrorContains(t, err, "no primary location")
}
