// Package realtime carries row-change notifications from the data store to
// live subscribers. The push channel is best-effort, not gap-free: consumers
// that observe a drop are expected to resubscribe and re-fetch.
package realtime

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Actions carried by an Event.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Tables published on the change channel.
const (
	TableMessages      = "messages"
	TableNotifications = "notifications"
	TableLikes         = "likes"
)

// NotifyChannel is the Postgres NOTIFY channel name used by the listener.
const NotifyChannel = "tawasol_changes"

// Event is one row-change notification.
type Event struct {
	Action string          `json:"action"`
	Table  string          `json:"table"`
	UserID uint            `json:"user_id"` // audience: the user this change is addressed to
	Row    json.RawMessage `json:"row"`
}

// Filter selects which events a subscription receives. A zero field matches
// everything.
type Filter struct {
	Table  string
	UserID uint
}

// Matches reports whether the event passes the filter.
func (f Filter) Matches(e Event) bool {
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	if f.UserID != 0 && f.UserID != e.UserID {
		return false
	}
	return true
}

// Subscription is an active registration on a Channel. Its event stream is
// closed either by Unsubscribe or by a transport drop; consumers that did not
// unsubscribe themselves must treat closure as a drop.
type Subscription struct {
	filter Filter
	events chan Event
}

// NewSubscription creates a detached subscription. Channel implementations
// outside this package use it to hand out subscriptions they feed themselves.
func NewSubscription(f Filter, buffer int) *Subscription {
	return &Subscription{filter: f, events: make(chan Event, buffer)}
}

// Events returns the subscription's event stream.
func (s *Subscription) Events() <-chan Event { return s.events }

// Filter returns the subscription's filter.
func (s *Subscription) Filter() Filter { return s.filter }

// Push offers an event to the subscription without blocking. It reports
// whether the event was accepted; a full buffer drops the event, which the
// consumer's reconcile re-fetch recovers.
func (s *Subscription) Push(e Event) bool {
	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

// Close ends the event stream. Consumers that did not unsubscribe themselves
// treat this as a transport drop.
func (s *Subscription) Close() { close(s.events) }

// Channel is the push-channel contract consumed by the sync engine. The core
// never holds transport-specific objects directly.
type Channel interface {
	Subscribe(f Filter) (*Subscription, error)
	Unsubscribe(s *Subscription)
}

// Publish emits a row-change event on the Postgres NOTIFY channel. Called by
// repositories after a successful write.
func Publish(db *gorm.DB, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return db.Exec("SELECT pg_notify(?, ?)", NotifyChannel, string(payload)).Error
}

// PublishRow marshals row and publishes it; marshal or notify failures are
// returned so callers can log them, but a failed publish never fails the
// originating write.
func PublishRow(db *gorm.DB, action, table string, userID uint, row any) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return Publish(db, Event{Action: action, Table: table, UserID: userID, Row: raw})
}
