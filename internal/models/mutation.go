package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the closed set of mutation kinds the offline queue can carry.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is one of the defined mutation kinds.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// QueuedMutation is a write that could not reach the remote endpoint.
// Entries are immutable once enqueued and only ever cleared wholesale after
// a full drain pass.
type QueuedMutation struct {
	Key       string
	Action    Action
	Payload   json.RawMessage
	Timestamp time.Time
}

// MutationKey derives the queue key from the action and enqueue time, so
// insertion order stays recoverable from the key alone.
func MutationKey(action Action, ts time.Time) string {
	return fmt.Sprintf("%s-%d", action, ts.UnixNano())
}

// DeleteRef is the payload of a delete mutation: just the record id.
type DeleteRef struct {
	ID int64 `json:"id"`
}
