package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by record events.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RecordEvent is a lightweight change notification for one record. It names
// the record, not its contents; the export worker re-reads the store, so a
// stale or duplicated event is harmless.
type RecordEvent struct {
	OwnerID    string    `json:"owner_id"`
	Collection string    `json:"collection"` // transactions, budgets, investments, settings
	Op         string    `json:"op"`
	RecordID   string    `json:"record_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordEvent(ownerID, collection, op, recordID string) *RecordEvent {
	return &RecordEvent{
		OwnerID:    ownerID,
		Collection: collection,
		Op:         op,
		RecordID:   recordID,
		Timestamp:  time.Now(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
