package models

import "time"

// ProjectionKind names a secondary write that can be replayed
type ProjectionKind string

const (
	// ProjectionOrderPaid sets orders.paymentStatus = Paid for TargetID
	ProjectionOrderPaid ProjectionKind = "order_paid"
	// ProjectionRequestStatus sets requests.requestStatus = Value for TargetID
	ProjectionRequestStatus ProjectionKind = "request_status"
	// ProjectionUserRole restores Value as the role of the requester of request
	// TargetID unless that request ended up accepted.
	ProjectionUserRole ProjectionKind = "user_role"
)

// PendingProjection is a secondary write that failed after its primary write
// succeeded. The reconciler replays it until it sticks.
type PendingProjection struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Kind      ProjectionKind `json:"kind" gorm:"index;not null"`
	TargetID  string         `json:"targetId" gorm:"size:36;not null"`
	Value     string         `json:"value"`
	// Undo is the role to restore if the request was resolved otherwise
	// before Value could be written. Only set for request_status.
	Undo      string         `json:"undo,omitempty"`
	Attempts  int            `json:"attempts"`
	LastError string         `json:"lastError"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Statistics is the dashboard aggregate
type Statistics struct {
	TotalPayments   float64 `json:"totalPayments"`
	TotalUsers      int64   `json:"totalUsers"`
	OrdersPending   int64   `json:"ordersPending"`
	OrdersDelivered int64   `json:"ordersDelivered"`
}
