package model

import "time"

// ChangeKind identifies the mutation that produced a change event
type ChangeKind string

const (
	// ChangeSnapshot is the kind of the initial state event a new observer
	// receives on subscribing; no mutation produced it
	ChangeSnapshot ChangeKind = "snapshot"

	ChangeRegistered    ChangeKind = "participant_registered"
	ChangeDeleted       ChangeKind = "participant_deleted"
	ChangeStatusUpdated ChangeKind = "status_updated"
	ChangeGameReset     ChangeKind = "game_reset"
	ChangeCleared       ChangeKind = "registry_cleared"
)

// ChangeEvent is emitted after every successful registry mutation.
// It carries the full post-mutation snapshot rather than a diff: the expected
// cardinality is tens to low hundreds of participants per event, and observers
// only ever care about the latest complete state.
type ChangeEvent struct {
	Kind      ChangeKind
	Timestamp time.Time
	Snapshot  Snapshot
}
