package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// SnapshotStore persists named page snapshots in a single studio_snapshots
// table: id is the primary key, page_id the secondary lookup index, and the
// document travels as JSONB.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS studio_snapshots (
  id          TEXT PRIMARY KEY,
  page_id     TEXT NOT NULL,
  site_id     TEXT NOT NULL,
  name        TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  thumbnail   TEXT NOT NULL DEFAULT '',
  document    JSONB NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_studio_snapshots_page_id ON studio_snapshots (page_id);
`

// EnsureSchema creates the snapshots table and its page index if missing.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("ensure snapshots schema: %w", err)
	}
	return nil
}

// Put upserts a snapshot by id.
func (s *SnapshotStore) Put(ctx context.Context, snap *domain.Snapshot) error {
	docJSON, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot document: %w", err)
	}

	const sql = `
INSERT INTO studio_snapshots
  (id, page_id, site_id, name, description, thumbnail, document, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name = EXCLUDED.name,
      description = EXCLUDED.description,
      thumbnail = EXCLUDED.thumbnail,
      document = EXCLUDED.document
;`
	_, err = s.pool.Exec(ctx, sql,
		snap.ID, snap.PageID, snap.SiteID, snap.Name, snap.Description,
		snap.Thumbnail, docJSON, snap.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by its id.
func (s *SnapshotStore) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	const sql = `
SELECT id, page_id, site_id, name, description, thumbnail, document, created_at
FROM studio_snapshots
WHERE id = $1
;`
	row := s.pool.QueryRow(ctx, sql, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// GetByPageID retrieves every snapshot stored for a page, newest first.
func (s *SnapshotStore) GetByPageID(ctx context.Context, pageID string) ([]*domain.Snapshot, error) {
	const sql = `
SELECT id, page_id, site_id, name, description, thumbnail, document, created_at
FROM studio_snapshots
WHERE page_id = $1
ORDER BY created_at DESC
;`
	rows, err := s.pool.Query(ctx, sql, pageID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for page: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots for page: %w", err)
	}
	return snapshots, nil
}

// Delete removes a snapshot by id.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM studio_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSnapshotNotFound
	}
	return nil
}

func scanSnapshot(row pgx.Row) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var docJSON []byte

	if err := row.Scan(
		&snap.ID, &snap.PageID, &snap.SiteID, &snap.Name, &snap.Description,
		&snap.Thumbnail, &docJSON, &snap.Timestamp,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(docJSON, &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot document: %w", err)
	}
	return &snap, nil
}
