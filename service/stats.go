package service

import (
	"context"

	"localchef-api/models"
	"localchef-api/store"

	"go.uber.org/zap"
)

// StatsCache holds the last computed aggregate
type StatsCache interface {
	Get(ctx context.Context) (*models.Statistics, bool, error)
	Put(ctx context.Context, s *models.Statistics) error
}

// Reporter computes the read-only dashboard aggregate. It never writes.
type Reporter struct {
	store *store.Store
	cache StatsCache
	log   *zap.Logger
}

// NewReporter builds a reporter. cache may be nil.
func NewReporter(s *store.Store, cache StatsCache, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{store: s, cache: cache, log: log.Named("stats")}
}

func (r *Reporter) Statistics(ctx context.Context) (*models.Statistics, error) {
	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx)
		if err != nil {
			r.log.Warn("statistics cache read failed", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	stats, err := r.compute(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, stats); err != nil {
			r.log.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (r *Reporter) compute(ctx context.Context) (*models.Statistics, error) {
	total, err := r.store.Payments.Total(ctx)
	if err != nil {
		return nil, storeErr("sum payments", err)
	}
	users, err := r.store.Users.Count(ctx)
	if err != nil {
		return nil, storeErr("count users", err)
	}
	pending, err := r.store.Orders.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, storeErr("count pending orders", err)
	}
	delivered, err := r.store.Orders.CountByStatus(ctx, models.StatusDelivered)
	if err != nil {
		return nil, storeErr("count delivered orders", err)
	}
	return &models.Statistics{
		TotalPayments:   total,
		TotalUsers:      users,
		OrdersPending:   pending,
		OrdersDelivered: delivered,
	}, nil
}

// OrderSummary counts orders per status for the admin view
func (r *Reporter) OrderSummary(ctx context.Context) (map[models.OrderStatus]int64, error) {
	summary := make(map[models.OrderStatus]int64, 4)
	for _, s := range []models.OrderStatus{models.StatusPending, models.StatusAccepted, models.StatusRejected, models.StatusDelivered} {
		n, err := r.store.Orders.CountByStatus(ctx, s)
		if err != nil {
			return nil, storeErr("count orders", err)
		}
		summary[s] = n
	}
	return summary, nil
}
