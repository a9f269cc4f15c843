package inventory

import "context"

// OptimisticFlag mediates an optimistic single-boolean toggle: the visible
// value flips immediately, the Synchronizer is invoked with the original
// value, and the result either confirms the flip with the authoritative
// refetched state or reverts it. The pattern is deliberately scoped to one
// boolean; multi-field edits go through an explicit submit flow instead.
type OptimisticFlag struct {
	value bool
}

// NewOptimisticFlag captures the current rendered value.
func NewOptimisticFlag(current bool) *OptimisticFlag {
	return &OptimisticFlag{value: current}
}

// Value returns the currently rendered value, which may be tentative while a
// toggle is in flight.
func (f *OptimisticFlag) Value() bool {
	return f.value
}

// Toggle flips the rendered value, asks the Synchronizer to persist the
// flip, and reconciles. On failure the rendered value reverts to what was
// captured and the error is returned for the caller to surface.
func (f *OptimisticFlag) Toggle(ctx context.Context, s *Synchronizer, userID, itemID string) error {
	original := f.value
	f.value = !original // tentative render

	item, err := s.ToggleFavorite(ctx, userID, itemID, original)
	if err != nil {
		f.value = original // rollback
		return err
	}

	// Authoritative state from the post-mutation refetch wins.
	f.value = item.Favorite
	return nil
}
