package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedEventType is returned by Decode for event type tags outside
// the closed variant set. The failure is scoped to the record that carried
// the tag.
var ErrUnsupportedEventType = errors.New("unsupported event type")

// Decode reconstructs the typed domain event embedded in an inbox record.
func Decode(eventType string, payload []byte) (Event, error) {
	switch eventType {
	case TypeOrderCreated:
		var event OrderCreatedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", TypeOrderCreated, err)
		}
		return event, nil
	case TypeOrderStateUpdated:
		var event OrderStateUpdatedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", TypeOrderStateUpdated, err)
		}
		return event, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEventType, eventType)
	}
}
