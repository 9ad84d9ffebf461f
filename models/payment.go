package models

import "time"

// Payment is the durable record that funds were captured for an order.
// It is never mutated after creation.
type Payment struct {
	ID            string    `json:"_id" gorm:"primaryKey;size:36"`
	OrderID       string    `json:"orderId" gorm:"index;size:36;not null"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId,omitempty"`
	UserEmail     string    `json:"userEmail,omitempty"`
	MealName      string    `json:"mealName,omitempty"`
	PaymentTime   time.Time `json:"paymentTime"`
}

// PaymentIntent is what the gateway needs to build a checkout
type PaymentIntent struct {
	OrderID  string
	MealName string
	Price    float64
}
