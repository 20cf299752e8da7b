package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

const (
	snapshotKeyPrefix = "studio:snapshot:" // snapshot blob: studio:snapshot:{snapshot_id}
	pageSetPrefix     = "studio:page:"     // set of snapshot IDs for a page: studio:page:{page_id}
)

// SnapshotRepository handles Redis operations for named page snapshots.
// Each snapshot is stored as a JSON blob keyed by id, with a per-page set
// acting as the secondary index. Snapshots never expire; only an explicit
// delete removes them.
type SnapshotRepository struct {
	client *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(client *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

// Put persists a snapshot and indexes it under its page.
func (r *SnapshotRepository) Put(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.snapshotKey(snap.ID), data, 0)
	pipe.SAdd(ctx, r.pageSetKey(snap.PageID), snap.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by its id.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	data, err := r.client.Get(ctx, r.snapshotKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// GetByPageID retrieves every snapshot indexed under a page. Index members
// whose blob has gone missing are skipped rather than failing the whole read.
func (r *SnapshotRepository) GetByPageID(ctx context.Context, pageID string) ([]*domain.Snapshot, error) {
	ids, err := r.client.SMembers(ctx, r.pageSetKey(pageID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for page: %w", err)
	}

	snapshots := make([]*domain.Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// Delete removes a snapshot and its index entry.
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	snap, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.snapshotKey(id))
	pipe.SRem(ctx, r.pageSetKey(snap.PageID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) snapshotKey(id string) string {
	return snapshotKeyPrefix + id
}

func (r *SnapshotRepository) pageSetKey(pageID string) string {
	return pageSetPrefix + pageID
}
