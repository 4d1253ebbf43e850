package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docbuild/internal/sphinx"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := testContext(t)
	first := sphinx.Report{
		BuildID:       NewBuildID(),
		Started:       time.Now().Add(-time.Minute).Truncate(time.Second),
		Duration:      42 * time.Second,
		Status:        sphinx.StatusSucceeded,
		SphinxVersion: "7.2.6",
		Commit:        "abc123def456",
		IndexFile:     "/srv/project/docs/build/html/index.html",
	}
	second := sphinx.Report{
		BuildID:  NewBuildID(),
		Started:  time.Now().Truncate(time.Second),
		Duration: 3 * time.Second,
		Status:   sphinx.StatusFailed,
		ExitCode: 2,
		Error:    "sphinx build failed",
	}

	require.NoError(t, store.Record(ctx, first))
	require.NoError(t, store.Record(ctx, second))

	reports, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Newest first.
	assert.Equal(t, second.BuildID, reports[0].BuildID)
	assert.Equal(t, sphinx.StatusFailed, reports[0].Status)
	assert.Equal(t, 2, reports[0].ExitCode)
	assert.Equal(t, "sphinx build failed", reports[0].Error)

	assert.Equal(t, first.BuildID, reports[1].BuildID)
	assert.Equal(t, "7.2.6", reports[1].SphinxVersion)
	assert.Equal(t, "abc123def456", reports[1].Commit)
	assert.Equal(t, 42*time.Second, reports[1].Duration)
	assert.Equal(t, first.Started.Unix(), reports[1].Started.Unix())
}

func TestRecentLimit(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := testContext(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, sphinx.Report{
			BuildID: NewBuildID(),
			Started: time.Now(),
			Status:  sphinx.StatusSucceeded,
		}))
	}

	reports, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestMemoryStoreSurvivesInterleavedUse(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Interleave writes and reads so the pool would rotate connections if
	// more than one were allowed; every operation must see the same
	// database.
	ctx := testContext(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Record(ctx, sphinx.Report{
			BuildID: NewBuildID(),
			Started: time.Now(),
			Status:  sphinx.StatusSucceeded,
		}))
		reports, err := store.Recent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, reports, i+1)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docbuild", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopen to confirm migrations are idempotent.
	store, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/srv/project", ".docbuild", "history.db"),
		DefaultPath("/srv/project"))
}
