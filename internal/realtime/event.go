package realtime

import (
	"fmt"
	"time"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

// AllTables subscribes to every table.
const AllTables = "*"

// Event is a row-level change in the store. Record holds the row after the
// change (before it, for deletes).
type Event struct {
	Table  string         `json:"table"`
	Type   EventType      `json:"type"`
	Record map[string]any `json:"record"`
	Origin string         `json:"origin,omitempty"`
	At     time.Time      `json:"at"`
}

// Value renders a column of the record as a string; missing or null is "".
func (e Event) Value(column string) string {
	v, ok := e.Record[column]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Filter narrows a subscription. Empty Events means every event type.
// Column/Value is an equality predicate on the record.
type Filter struct {
	Events []EventType `json:"events,omitempty"`
	Column string      `json:"column,omitempty"`
	Value  string      `json:"value,omitempty"`
}

func Eq(column, value string, events ...EventType) Filter {
	return Filter{Events: events, Column: column, Value: value}
}

func (f Filter) Match(e Event) bool {
	if len(f.Events) > 0 {
		found := false
		for _, t := range f.Events {
			if t == e.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Column == "" {
		return true
	}
	return e.Value(f.Column) == f.Value
}

type Subscription interface {
	// Close stops delivery. Calls after the first are no-ops.
	Close()
}

// Feed delivers store change events to subscribers, possibly out of order.
// Delivery is at least once while the feed keeps up; a feed under load may
// drop events, and reports which table lost one if it implements
// OverflowNotifier.
type Feed interface {
	Subscribe(table string, filter Filter, onEvent func(Event)) (Subscription, error)
}

// OverflowNotifier lets consumers resync a whole table after a dropped event.
type OverflowNotifier interface {
	OnOverflow(fn func(table string))
}

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(e Event)
}
