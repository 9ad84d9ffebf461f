package service

import (
	"context"
	"errors"
	"fmt"

	"localchef-api/metrics"
	"localchef-api/models"
	"localchef-api/store"

	"go.uber.org/zap"
)

// deferProjection queues a failed secondary write. The primary write already
// happened, so the caller is not told about the failure.
func (d Deps) deferProjection(ctx context.Context, q *store.Projections, p models.PendingProjection, cause error) {
	log := d.Log.With(zap.String("kind", string(p.Kind)), zap.String("target_id", p.TargetID))
	log.Warn("secondary write failed, queued for reconciliation", zap.Error(cause))
	metrics.RecordProjection(string(p.Kind), "deferred")

	p.LastError = cause.Error()
	if err := q.Add(context.WithoutCancel(ctx), &p); err != nil {
		log.Error("could not queue secondary write", zap.Error(err))
	}
}

// restoreUnlessAccepted puts the requester of requestID back on prior unless
// the request ended up accepted. A deleted request leaves the role alone.
func restoreUnlessAccepted(ctx context.Context, s *store.Store, requestID string, prior models.UserRole) (restored bool, err error) {
	req, err := s.Requests.Get(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if req.RequestStatus == models.RequestAccepted {
		return false, nil
	}
	if _, err := s.Users.SetRole(ctx, req.UserID, prior); err != nil {
		return false, err
	}
	return true, nil
}

// Reconciler replays queued secondary writes until they stick
type Reconciler struct {
	store *store.Store
	batch int
	log   *zap.Logger
}

func NewReconciler(s *store.Store, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{store: s, batch: 100, log: log.Named("reconciler")}
}

// RunOnce replays one batch and reports how many projections were applied and
// how many are still failing.
func (r *Reconciler) RunOnce(ctx context.Context) (applied, failed int, err error) {
	pending, err := r.store.Projections.Pending(ctx, r.batch)
	if err != nil {
		return 0, 0, storeErr("list pending projections", err)
	}

	for _, p := range pending {
		log := r.log.With(zap.Uint("projection_id", p.ID), zap.String("kind", string(p.Kind)), zap.String("target_id", p.TargetID))

		if err := r.apply(ctx, p); err != nil {
			failed++
			metrics.RecordProjection(string(p.Kind), "failed")
			log.Warn("projection still failing", zap.Int("attempts", p.Attempts+1), zap.Error(err))
			if err := r.store.Projections.Failed(ctx, p.ID, err.Error()); err != nil {
				log.Error("could not record projection failure", zap.Error(err))
			}
			continue
		}

		applied++
		metrics.RecordProjection(string(p.Kind), "reconciled")
		if err := r.store.Projections.Done(ctx, p.ID); err != nil {
			log.Error("could not clear projection", zap.Error(err))
		}
	}
	return applied, failed, nil
}

// Run is the cron entry point
func (r *Reconciler) Run() {
	applied, failed, err := r.RunOnce(context.Background())
	if err != nil {
		r.log.Error("reconciliation run failed", zap.Error(err))
		return
	}
	if applied > 0 || failed > 0 {
		r.log.Info("reconciliation run", zap.Int("applied", applied), zap.Int("failed", failed))
	}
}

func (r *Reconciler) apply(ctx context.Context, p models.PendingProjection) error {
	switch p.Kind {
	case models.ProjectionOrderPaid:
		status := models.PaymentStatus(p.Value)
		if !status.Valid() {
			r.log.Error("invalid payment status, dropping", zap.String("order_id", p.TargetID), zap.String("status", p.Value))
			return nil
		}
		found, err := r.store.Orders.SetPaymentStatus(ctx, p.TargetID, status)
		if err != nil {
			return err
		}
		if !found {
			r.log.Warn("order gone, dropping payment flag", zap.String("order_id", p.TargetID))
		}
		return nil

	case models.ProjectionRequestStatus:
		to := models.RequestStatus(p.Value)
		if !to.Valid() || to == models.RequestPending {
			r.log.Error("invalid request status, dropping", zap.String("request_id", p.TargetID), zap.String("status", p.Value))
			return nil
		}
		ok, err := r.store.Requests.SetStatus(ctx, p.TargetID, models.RequestPending, to)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		// resolved by someone else in the meantime, or deleted
		r.log.Warn("request no longer pending, dropping status", zap.String("request_id", p.TargetID), zap.String("status", p.Value))
		if p.Undo == "" {
			return nil
		}
		return r.undoGrant(ctx, p.TargetID, p.Undo)

	case models.ProjectionUserRole:
		return r.undoGrant(ctx, p.TargetID, p.Value)
	}

	r.log.Error("unknown projection kind, dropping", zap.String("kind", string(p.Kind)))
	return nil
}

// undoGrant takes back a role granted by an accept whose request was rejected
// before the accept could be recorded.
func (r *Reconciler) undoGrant(ctx context.Context, requestID, role string) error {
	prior := models.UserRole(role)
	if !prior.Valid() {
		r.log.Error("invalid role to restore, dropping", zap.String("request_id", requestID), zap.String("role", role))
		return nil
	}
	restored, err := restoreUnlessAccepted(ctx, r.store, requestID, prior)
	if err != nil {
		return err
	}
	if restored {
		r.log.Info("role grant undone", zap.String("request_id", requestID), zap.String("role", role))
	}
	return nil
}

// Backlog reports how many secondary writes are still queued
func (r *Reconciler) Backlog(ctx context.Context) (int, error) {
	n, err := r.store.Projections.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("projection backlog: %w", err)
	}
	return int(n), nil
}
