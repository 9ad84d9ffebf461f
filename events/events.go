// Package events publishes domain events about orders, payments and role
// requests. Publishing is best-effort; callers log failures and move on.
package events

import (
	"context"
	"time"
)

const (
	OrderPlaced         = "order.placed"
	OrderStatusChanged  = "order.status_changed"
	OrderDeleted        = "order.deleted"
	PaymentRecorded     = "payment.recorded"
	RoleRequestCreated  = "role_request.submitted"
	RoleRequestResolved = "role_request.resolved"
	UserRoleChanged     = "user.role_changed"
)

type Event struct {
	Type       string         `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

func New(typ, key string, data map[string]any) Event {
	return Event{Type: typ, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
