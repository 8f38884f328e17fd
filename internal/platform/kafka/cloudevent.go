package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// CloudEvent is the envelope every message on our topics is wrapped in.
// It follows the CloudEvents 1.0 attribute names.
type CloudEvent struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	SpecVersion     string          `json:"specversion"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent wraps the given payload in a CloudEvent envelope.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	raw, err := codec.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return CloudEvent{
		ID:              uuid.NewString(),
		Source:          source,
		SpecVersion:     "1.0",
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

// ParseData unmarshals the event payload into v.
func (e CloudEvent) ParseData(v interface{}) error {
	if err := codec.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	return nil
}

// Marshal serializes the full envelope.
func (e CloudEvent) Marshal() ([]byte, error) {
	raw, err := codec.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cloud event: %w", err)
	}
	return raw, nil
}

// UnmarshalCloudEvent deserializes a CloudEvent envelope.
func UnmarshalCloudEvent(raw []byte) (CloudEvent, error) {
	var e CloudEvent
	if err := codec.Unmarshal(raw, &e); err != nil {
		return CloudEvent{}, fmt.Errorf("failed to unmarshal cloud event: %w", err)
	}
	return e, nil
}
