// activity/activity.go
package activity

import "time"

// Type classifies a single entry in the activity log.
type Type string

const (
	OrderStatus Type = "OrderStatus"
	Execution   Type = "Execution"
	OpenOrder   Type = "OpenOrder"
	Error       Type = "Error"
)

// Record is one durable log entry describing a single observed terminal
// event or a supervisor-level failure. Records are append-only: nothing in
// the system updates or deletes one after it has been written.
type Record struct {
	Timestamp   time.Time      `json:"timestamp"`
	Type        Type           `json:"event_type"`
	Description string         `json:"description"`
	Raw         map[string]any `json:"raw_data"`
}
