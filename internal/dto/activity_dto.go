package dto

// ActivityMessage is the payload flowing through the in-process activity
// topic. The consumer persists it as a system log entry and, when an event
// type is attached, forwards it to the durable bus.
type ActivityMessage struct {
	Level     string                 `json:"level"`
	Module    string                 `json:"module"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	EventType string                 `json:"event_type,omitempty"`
}
