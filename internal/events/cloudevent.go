package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const cloudEventsSpecVersion = "1.0"

// CloudEvent is a CloudEvents 1.0 envelope in structured JSON mode.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent wraps data in a new envelope with a fresh ID.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("marshal event data: %w", err)
	}
	return CloudEvent{
		SpecVersion:     cloudEventsSpecVersion,
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

// ParseCloudEvent decodes an envelope from a message value.
func ParseCloudEvent(value []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(value, &ce); err != nil {
		return CloudEvent{}, fmt.Errorf("parse cloud event: %w", err)
	}
	if ce.Type == "" || ce.ID == "" {
		return CloudEvent{}, fmt.Errorf("parse cloud event: missing id or type")
	}
	return ce, nil
}

// ParseData decodes the event payload into v.
func (ce CloudEvent) ParseData(v interface{}) error {
	return json.Unmarshal(ce.Data, v)
}
