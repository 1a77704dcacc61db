package catalog_test

import (
	"strings"
	"testing"

	"github.com/edge-curation/rpm-mirror/internal/catalog"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `
# desired packages
bash|0|5.2.26|3.el9|x86_64|baseos
openssl|1|3.2.1|1.el9|x86_64|baseos
tzdata|(none)|2024a|1|noarch|appstream
`
	cat, err := catalog.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cat.Entries, 3)
	require.Zero(t, cat.Skipped)

	require.Equal(t, "bash", cat.Entries[0].Name)
	require.Equal(t, 1, cat.Entries[1].Epoch)
	require.Equal(t, 0, cat.Entries[2].Epoch)
	require.Equal(t, "appstream", cat.Entries[2].Repo)
}

func TestParseSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		"bash|0|5.2.26|3.el9|x86_64|baseos",
		"not-a-record",
		"curl|x|8.0|1|x86_64|baseos",   // bad epoch
		"||1.0|1|x86_64|baseos",        // empty name
		"zlib|0|1.3|1|x86_64|appstream",
	}, "\n")

	cat, err := catalog.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cat.Entries, 2)
	require.Equal(t, 3, cat.Skipped)
	require.Equal(t, "bash", cat.Entries[0].Name)
	require.Equal(t, "zlib", cat.Entries[1].Name)
}

func TestParsePreservesOrder(t *testing.T) {
	input := strings.Join([]string{
		"c|0|1|1|noarch|r",
		"a|0|1|1|noarch|r",
		"b|0|1|1|noarch|r",
	}, "\n")

	cat, err := catalog.Parse(strings.NewReader(input))
	require.NoError(t, err)

	var names []string
	for _, e := range cat.Entries {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{"c", "a", "b"}, names)
}
