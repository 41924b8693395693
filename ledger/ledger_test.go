package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglocalnews/clean-go/scrape"
)

func createTestStore(t *testing.T) *Store {
	store, err := NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err, "should create ledger store")
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSummary(slug string, started time.Time) scrape.RunSummary {
	return scrape.RunSummary{
		Slug:         slug,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Minute),
		PagesFetched: 12,
		AssetsFound:  34,
		ExportPath:   "/exports/" + slug + ".json",
	}
}

func TestRecordRunAndList(t *testing.T) {
	store := createTestStore(t)
	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordRun(sampleSummary("ca_ventura_county_sheriff", started)))
	require.NoError(t, store.RecordRun(sampleSummary("ca_ventura_county_sheriff", started.Add(time.Hour))))
	require.NoError(t, store.RecordRun(sampleSummary("ca_livermore_pd", started)))

	runs, err := store.Runs("ca_ventura_county_sheriff")
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first.
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.Equal(t, 12, runs[0].PagesFetched)
	assert.Equal(t, 34, runs[0].AssetsFound)
	assert.NotEqual(t, uuid.Nil, runs[0].RunID)

	all, err := store.Runs("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLastRun(t *testing.T) {
	store := createTestStore(t)

	last, err := store.LastRun("ca_never_scraped")
	require.NoError(t, err)
	assert.Nil(t, last)

	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(sampleSummary("ca_livermore_pd", started)))
	require.NoError(t, store.RecordRun(sampleSummary("ca_livermore_pd", started.Add(2*time.Hour))))

	last, err = store.LastRun("ca_livermore_pd")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, started.Add(2*time.Hour), last.StartedAt)
	assert.Equal(t, "/exports/ca_livermore_pd.json", last.ExportPath)
}
