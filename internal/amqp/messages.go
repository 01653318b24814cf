package amqp

import (
	"encoding/json"
	"time"
)

// ImportEvent announces that a batch of records entered a session's
// override layer. Consumers only get the batch metadata; the records
// themselves stay in the session.
type ImportEvent struct {
	BatchID    string    `json:"batch_id"`
	Source     string    `json:"source"` // "upload" or "manual"
	MonthLabel string    `json:"month_label,omitempty"`
	Records    int       `json:"records"`
	Coerced    int       `json:"coerced_cells"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewImportEvent stamps a new event with the current time.
func NewImportEvent(batchID, source, monthLabel string, records, coerced int) *ImportEvent {
	return &ImportEvent{
		BatchID:    batchID,
		Source:     source,
		MonthLabel: monthLabel,
		Records:    records,
		Coerced:    coerced,
		Timestamp:  time.Now(),
	}
}

func (e *ImportEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ImportEventFromJSON(data []byte) (*ImportEvent, error) {
	var ev ImportEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
