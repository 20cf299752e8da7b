package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// setupTestStore connects to the test PostgreSQL instance.
// Skips the test if TEST_DB_DSN is not set.
func setupTestStore(t *testing.T) *SnapshotStore {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewSnapshotStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	// Clean the table through database/sql so the verification path is
	// independent from the pgx store under test.
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`DELETE FROM studio_snapshots`)
	require.NoError(t, err)

	return store
}

func storeSnapshot(id, pageID, title string, at time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		ID:        id,
		Name:      "checkpoint " + id,
		Timestamp: at,
		PageID:    pageID,
		SiteID:    "site-1",
		Data: &domain.Document{
			Root: domain.RootComponent{Children: []string{"a"}},
			Components: map[string]*domain.Component{
				"a": {ID: "a", Type: "Hero", Props: map[string]any{"title": title}, Children: []string{}},
			},
		},
	}
}

func TestSnapshotStore_PutAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	snap := storeSnapshot("snap-1", "page-1", "hello", time.Now())
	require.NoError(t, store.Put(ctx, snap))

	got, err := store.Get(ctx, "snap-1")
	require.NoError(t, err)

	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Name, got.Name)
	assert.Equal(t, snap.PageID, got.PageID)
	assert.Equal(t, snap.SiteID, got.SiteID)
	require.NotNil(t, got.Data)
	assert.Equal(t, "hello", got.Data.Components["a"].Props["title"])
}

func TestSnapshotStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotStore_PutUpserts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	at := time.Now()
	require.NoError(t, store.Put(ctx, storeSnapshot("snap-1", "page-1", "v1", at)))

	updated := storeSnapshot("snap-1", "page-1", "v2", at)
	updated.Name = "renamed"
	require.NoError(t, store.Put(ctx, updated))

	got, err := store.Get(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "v2", got.Data.Components["a"].Props["title"])

	snaps, err := store.GetByPageID(ctx, "page-1")
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestSnapshotStore_GetByPageID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.Put(ctx, storeSnapshot("snap-old", "page-1", "old", base)))
	require.NoError(t, store.Put(ctx, storeSnapshot("snap-new", "page-1", "new", base.Add(time.Minute))))
	require.NoError(t, store.Put(ctx, storeSnapshot("snap-other", "page-2", "other", base)))

	snaps, err := store.GetByPageID(ctx, "page-1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// Newest first.
	assert.Equal(t, "snap-new", snaps[0].ID)
	assert.Equal(t, "snap-old", snaps[1].ID)

	snaps, err = store.GetByPageID(ctx, "page-3")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSnapshotStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, storeSnapshot("snap-1", "page-1", "x", time.Now())))
	require.NoError(t, store.Delete(ctx, "snap-1"))

	_, err := store.Get(ctx, "snap-1")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "snap-1"), domain.ErrSnapshotNotFound)
}
