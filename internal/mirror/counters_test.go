package mirror_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edge-curation/rpm-mirror/internal/mirror"
)

func TestCountersClampAtZero(t *testing.T) {
	c := &mirror.RepoCounters{}
	c.AddNew(-5)
	c.AddUpdate(1)
	c.AddUpdate(-3)
	counts := c.Snapshot()
	require.Zero(t, counts.New)
	require.Zero(t, counts.Update)
}

func TestCountersConcurrentExemptionNeverNegative(t *testing.T) {
	// Interleaved increment/decrement pairs from many workers must net to
	// zero without any transient negative value escaping the clamp.
	set := mirror.NewCounterSet()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := set.Repo("extras")
			for j := 0; j < 500; j++ {
				c.AddNew(1)
				c.AddNew(-1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, set.Repo("extras").Snapshot().New)
}

func TestCounterSetSnapshot(t *testing.T) {
	set := mirror.NewCounterSet()
	set.Repo("baseos").AddNew(2)
	set.Repo("appstream").AddExists(1)

	snap := set.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, 2, snap["baseos"].New)
	require.Equal(t, 1, snap["appstream"].Exists)
}

func TestChangedSet(t *testing.T) {
	s := mirror.NewChangedSet()
	require.True(t, s.Empty())

	require.True(t, s.Add("baseos"))
	require.False(t, s.Add("baseos"), "second add reports already present")
	s.Add("appstream")

	require.True(t, s.Contains("baseos"))
	require.False(t, s.Contains("extras"))
	require.Equal(t, 2, s.Len())
	require.Equal(t, []string{"appstream", "baseos"}, s.Names())
}
