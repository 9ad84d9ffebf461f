package models

import "time"

// OrderStatus represents the lifecycle state of a meal order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusRejected  OrderStatus = "rejected"
	StatusDelivered OrderStatus = "delivered"
)

// Valid reports whether s is one of the known order states
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusDelivered:
		return true
	}
	return false
}

// PaymentStatus is the order-side projection of recorded payments
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// ActiveOrderStatuses is the default listing scope: orders a chef can still act on
var ActiveOrderStatuses = []OrderStatus{StatusPending, StatusAccepted}

type Order struct {
	ID            string               `json:"_id" gorm:"primaryKey;size:36"`
	MealID        string               `json:"mealId,omitempty"`
	MealName      string               `json:"mealName" gorm:"not null"`
	Price         float64              `json:"price" gorm:"not null"`
	Quantity      int                  `json:"quantity" gorm:"not null"`
	ChefID        string               `json:"chefId" gorm:"index;not null"`
	UserEmail     string               `json:"userEmail" gorm:"index;not null"`
	UserAddress   string               `json:"userAddress" gorm:"not null"`
	OrderStatus   OrderStatus          `json:"orderStatus" gorm:"index;not null;default:'pending'"`
	PaymentStatus PaymentStatus        `json:"paymentStatus" gorm:"not null;default:'Pending'"`
	OrderTime     time.Time            `json:"orderTime"`
	StatusHistory []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderStatusHistory is the audit trail of accepted transitions
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"index;size:36;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
