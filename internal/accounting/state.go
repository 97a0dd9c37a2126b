// Package accounting validates the accounting workflow flags on features.
//
// A feature carries two related flags: whether it requires an accounting
// step at all (HasAccounting) and whether that step is finished
// (AccountingDone). Only three combinations are valid; "done without
// required" is rejected everywhere.
package accounting

import "errors"

// ErrDoneWithoutAccounting is returned when a change would mark accounting
// as done on a feature that does not require accounting.
var ErrDoneWithoutAccounting = errors.New("accounting cannot be marked done when the feature does not require accounting")

// State is the stored flag pair for one feature.
type State struct {
	HasAccounting  bool
	AccountingDone bool
}

// Change is a partial update to the flag pair. Nil fields were not provided
// by the caller; an explicit false is distinct from absence.
type Change struct {
	HasAccounting  *bool
	AccountingDone *bool
}

// Resolve overlays a partial change onto the current state and returns the
// resulting state, or ErrDoneWithoutAccounting if the combination is
// invalid. For creation, pass the zero State as current.
//
// Explicitly turning HasAccounting off always resets AccountingDone in the
// same resolution, regardless of any value requested for it.
func Resolve(current State, change Change) (State, error) {
	next := current
	if change.HasAccounting != nil {
		next.HasAccounting = *change.HasAccounting
	}
	if change.AccountingDone != nil {
		next.AccountingDone = *change.AccountingDone
	}

	if next.AccountingDone && !next.HasAccounting {
		return State{}, ErrDoneWithoutAccounting
	}

	// Completion cannot survive accounting being switched off.
	if change.HasAccounting != nil && !*change.HasAccounting {
		next.AccountingDone = false
	}

	return next, nil
}
