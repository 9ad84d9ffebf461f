// Package service holds the order lifecycle engine, the role request workflow
// and the read-side reporters. Every write goes through explicit store
// handles passed in at construction.
package service

import (
	"context"
	"strings"
	"time"

	"localchef-api/config"
	"localchef-api/events"
	"localchef-api/models"

	"go.uber.org/zap"
)

// Deps are shared by every service
type Deps struct {
	Events      events.Publisher
	Log         *zap.Logger
	Consistency config.ConsistencyMode
	Now         func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Consistency == "" {
		d.Consistency = config.TwoPhase
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

const publishTimeout = 2 * time.Second

// publish never fails the caller; a lost event is logged
func (d Deps) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := d.Events.Publish(ctx, e); err != nil {
		d.Log.Warn("event not published", zap.String("type", e.Type), zap.String("key", e.Key), zap.Error(err))
	}
}

// authorize applies the administrative policy to a verified identity
func authorize(policy config.ResolvePolicy, caller models.Identity) error {
	if caller.Email == "" {
		return ErrUnauthenticated
	}
	if policy == config.PolicyAuthenticated {
		return nil
	}
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
