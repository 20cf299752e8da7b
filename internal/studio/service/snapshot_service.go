package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// SnapshotRepository is the durable object-store contract for named snapshots:
// put by key, list by the page secondary index, delete by key.
type SnapshotRepository interface {
	Put(ctx context.Context, snap *domain.Snapshot) error
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
	GetByPageID(ctx context.Context, pageID string) ([]*domain.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// SnapshotService owns the named-snapshot list for one page under edit. The
// page/site context must be set before any operation. The in-memory list is
// updated only after the durable write has succeeded, so a failed save or
// delete never leaves phantom state.
type SnapshotService struct {
	repo      SnapshotRepository
	pageID    string
	siteID    string
	snapshots []*domain.Snapshot // most recent first
	lastErr   error
}

// NewSnapshotService creates a SnapshotService without context; call
// SetContext before using it.
func NewSnapshotService(repo SnapshotRepository) *SnapshotService {
	return &SnapshotService{repo: repo}
}

// SetContext binds the service to the page and site that own its snapshots.
func (s *SnapshotService) SetContext(pageID, siteID string) {
	s.pageID = pageID
	s.siteID = siteID
}

func (s *SnapshotService) requireContext() error {
	if s.pageID == "" || s.siteID == "" {
		return domain.ErrContextNotSet
	}
	return nil
}

// Save deep-copies the document, persists it under a fresh id, and prepends
// it to the in-memory list. Storage failures propagate to the caller: an
// explicit user-triggered save must never fail silently.
func (s *SnapshotService) Save(ctx context.Context, name string, doc *domain.Document, description, thumbnail string) (*domain.Snapshot, error) {
	if err := s.requireContext(); err != nil {
		return nil, err
	}

	data, err := doc.Clone()
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	snap := &domain.Snapshot{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Timestamp:   time.Now(),
		Data:        data,
		Thumbnail:   thumbnail,
		PageID:      s.pageID,
		SiteID:      s.siteID,
	}

	if err := s.repo.Put(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	s.snapshots = append([]*domain.Snapshot{snap}, s.snapshots...)
	return snap, nil
}

// Load replaces the in-memory list with the page's stored snapshots, newest
// first. Load is called opportunistically when a session opens, so errors are
// captured into LastError instead of being returned.
func (s *SnapshotService) Load(ctx context.Context) {
	if err := s.requireContext(); err != nil {
		s.lastErr = err
		return
	}

	snapshots, err := s.repo.GetByPageID(ctx, s.pageID)
	if err != nil {
		s.lastErr = err
		return
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	s.snapshots = snapshots
	s.lastErr = nil
}

// LastError reports the most recent Load failure, nil after a successful Load.
func (s *SnapshotService) LastError() error {
	return s.lastErr
}

// Snapshots returns the in-memory list, most recent first.
func (s *SnapshotService) Snapshots() []*domain.Snapshot {
	out := make([]*domain.Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Delete removes a snapshot durably, then from the in-memory list. Storage
// failures propagate and leave the list untouched.
func (s *SnapshotService) Delete(ctx context.Context, id string) error {
	if err := s.requireContext(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	for i, snap := range s.snapshots {
		if snap.ID == id {
			s.snapshots = append(s.snapshots[:i], s.snapshots[i+1:]...)
			break
		}
	}
	return nil
}

// Restore returns a deep copy of a stored snapshot's document. It does not
// touch the history log; feeding the document back into the editor and
// recording a snapshot-restored action is the caller's decision.
func (s *SnapshotService) Restore(ctx context.Context, id string) (*domain.Document, error) {
	snap, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Data.Clone()
}

// Compare diffs two stored snapshots.
func (s *SnapshotService) Compare(ctx context.Context, idA, idB string) (*domain.SnapshotDiff, error) {
	a, err := s.lookup(ctx, idA)
	if err != nil {
		return nil, err
	}
	b, err := s.lookup(ctx, idB)
	if err != nil {
		return nil, err
	}
	return DiffDocuments(a.Data, b.Data), nil
}

// CompareToCurrent diffs a stored snapshot against the live document.
func (s *SnapshotService) CompareToCurrent(ctx context.Context, id string, live *domain.Document) (*domain.SnapshotDiff, error) {
	snap, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return DiffDocuments(snap.Data, live), nil
}

// lookup checks the in-memory list first and falls back to the durable store,
// so reads work even before Load has run.
func (s *SnapshotService) lookup(ctx context.Context, id string) (*domain.Snapshot, error) {
	for _, snap := range s.snapshots {
		if snap.ID == id {
			return snap, nil
		}
	}
	return s.repo.Get(ctx, id)
}
