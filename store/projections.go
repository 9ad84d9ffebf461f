package store

import (
	"context"

	"localchef-api/models"

	"gorm.io/gorm"
)

// Projections queues secondary writes that must be replayed
type Projections struct {
	db *gorm.DB
}

func (p *Projections) Add(ctx context.Context, proj *models.PendingProjection) error {
	return p.db.WithContext(ctx).Create(proj).Error
}

// Pending returns the oldest queued projections first
func (p *Projections) Pending(ctx context.Context, limit int) ([]models.PendingProjection, error) {
	out := []models.PendingProjection{}
	err := p.db.WithContext(ctx).Order("id asc").Limit(limit).Find(&out).Error
	return out, err
}

// Count reports the whole backlog
func (p *Projections) Count(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&models.PendingProjection{}).Count(&n).Error
	return n, err
}

func (p *Projections) Done(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Delete(&models.PendingProjection{}, id).Error
}

func (p *Projections) Failed(ctx context.Context, id uint, cause string) error {
	return p.db.WithContext(ctx).Model(&models.PendingProjection{}).Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause,
		}).Error
}
