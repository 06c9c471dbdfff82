package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"showcase/internal/activity"
)

// ActivityMessage carries one journaled event between processes.
type ActivityMessage struct {
	Event     activity.Event `json:"event"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewActivityMessage(e activity.Event, source string) *ActivityMessage {
	return &ActivityMessage{
		Event:     e,
		Source:    source,
		Timestamp: time.Now(),
	}
}

func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON decodes a message and rejects ones without a kind.
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event.Kind == "" || msg.Event.Demo == "" {
		return nil, fmt.Errorf("activity message missing demo or kind")
	}
	return &msg, nil
}
