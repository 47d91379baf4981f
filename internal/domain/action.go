package domain

import "time"

// ActionKind classifies a queued offline mutation.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// OfflineAction is a durably queued record of a mutation that could not be
// applied to the remote service when it was requested. Actions are stored and
// replayed in strict insertion order; redundant actions against the same task
// are not coalesced.
type OfflineAction struct {
	ActionID string     `json:"action_id"`
	Kind     ActionKind `json:"kind"`
	// TaskID is the local identifier of the affected task at enqueue time.
	TaskID int `json:"task_id"`

	Create *TaskDraft `json:"create,omitempty"`
	Update *TaskPatch `json:"update,omitempty"`

	// EnqueuedAt is diagnostic only; it plays no part in conflict resolution.
	EnqueuedAt time.Time `json:"enqueued_at"`
}
