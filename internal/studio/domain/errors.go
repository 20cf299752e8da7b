package domain

import "errors"

var (
	ErrEntryNotFound    = errors.New("history entry not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrContextNotSet    = errors.New("snapshot context not set: pageID and siteID are required")
	ErrSessionNotFound  = errors.New("editor session not found")
	ErrHistoryBoundary  = errors.New("no further history in that direction")
)
