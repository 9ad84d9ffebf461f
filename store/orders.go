package store

import (
	"context"

	"localchef-api/models"

	"gorm.io/gorm"
)

// OrderFilter narrows an order listing. Empty fields do not filter.
type OrderFilter struct {
	Statuses []models.OrderStatus
	ChefID   string
}

// Orders is the handle on the orders collection
type Orders struct {
	db *gorm.DB
}

func (o *Orders) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = newID()
	}
	return o.db.WithContext(ctx).Create(order).Error
}

func (o *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := o.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (o *Orders) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := o.db.WithContext(ctx).Model(&models.Order{})
	if len(f.Statuses) > 0 {
		q = q.Where("order_status IN ?", f.Statuses)
	}
	if f.ChefID != "" {
		q = q.Where("chef_id = ?", f.ChefID)
	}

	orders := []models.Order{}
	if err := q.Order("order_time desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition moves the order from one status to another only if it is still
// in from, and appends the history row in the same transaction. It reports
// false when the order is missing or no longer in from.
func (o *Orders) Transition(ctx context.Context, id string, from, to models.OrderStatus, note string) (bool, error) {
	applied := false
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND order_status = ?", id, from).
			Update("order_status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			Note:       note,
		}).Error
	})
	return applied && err == nil, err
}

// SetPaymentStatus overwrites the payment projection. It reports whether an
// order with that id exists.
func (o *Orders) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (bool, error) {
	res := o.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status)
	return res.RowsAffected > 0, res.Error
}

// Delete removes the order and its history. It reports whether it existed.
func (o *Orders) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return tx.Delete(&models.OrderStatusHistory{}, "order_id = ?", id).Error
	})
	return deleted, err
}

func (o *Orders) History(ctx context.Context, id string) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	err := o.db.WithContext(ctx).Where("order_id = ?", id).Order("id asc").Find(&history).Error
	return history, err
}

func (o *Orders) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var n int64
	err := o.db.WithContext(ctx).Model(&models.Order{}).Where("order_status = ?", status).Count(&n).Error
	return n, err
}

func (o *Orders) Count(ctx context.Context) (int64, error) {
	var n int64
	err := o.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}
