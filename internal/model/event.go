package model

import (
	"fmt"
	"strings"
)

// Event is a raw event record as decoded from JSON. Field names follow ECS
// conventions ("@timestamp", "host.name", "event.action") but the engine
// treats everything beyond the fields it resolves as opaque payload.
type Event map[string]interface{}

// Field resolves a dot-notation path against the event. A path segment that
// does not exist, or a segment applied to a non-object value, resolves to
// (nil, false). Leading "@" keys like "@timestamp" are plain top-level keys.
func (e Event) Field(path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	var current interface{} = map[string]interface{}(e)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// FieldString resolves a path and renders the value as a string.
func (e Event) FieldString(path string) (string, bool) {
	v, ok := e.Field(path)
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// Timestamp returns the event's "@timestamp" value, or "" when absent.
func (e Event) Timestamp() string {
	s, _ := e.FieldString("@timestamp")
	return s
}

// HostName returns the event's "host.name" value, or "" when absent.
func (e Event) HostName() string {
	s, _ := e.FieldString("host.name")
	return s
}

// EventAction returns the event's "event.action" value, or "" when absent.
func (e Event) EventAction() string {
	s, _ := e.FieldString("event.action")
	return s
}
