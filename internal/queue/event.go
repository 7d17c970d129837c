// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried by RecordChangedEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChangedEvent is published after every successful add, update or
// delete. It carries enough for downstream consumers to log or trigger
// report refreshes without querying the primary database.
type RecordChangedEvent struct {
	Entity     string `json:"entity"`
	ID         int64  `json:"id"`
	Action     string `json:"action"`
	User       string `json:"user"`
	Version    int64  `json:"version,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
