package store

import (
	"context"

	"localchef-api/models"

	"gorm.io/gorm"
)

// Payments is the handle on the payments collection. It is append-only.
type Payments struct {
	db *gorm.DB
}

func (p *Payments) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = newID()
	}
	return p.db.WithContext(ctx).Create(payment).Error
}

func (p *Payments) ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := p.db.WithContext(ctx).Where("order_id = ?", orderID).Order("payment_time asc").Find(&payments).Error
	return payments, err
}

// Total sums every recorded amount
func (p *Payments) Total(ctx context.Context) (float64, error) {
	var total float64
	err := p.db.WithContext(ctx).Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
