package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"localchef-api/config"
	"localchef-api/events"
	"localchef-api/metrics"
	"localchef-api/models"
	"localchef-api/statemachine"
	"localchef-api/store"

	"go.uber.org/zap"
)

// PaymentGateway turns an order into a hosted checkout and returns where to
// redirect the buyer.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, intent models.PaymentIntent) (string, error)
}

type PlaceOrderInput struct {
	MealID      string  `json:"mealId"`
	MealName    string  `json:"mealName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ChefID      string  `json:"chefId"`
	UserEmail   string  `json:"userEmail"`
	UserAddress string  `json:"userAddress"`
}

func (in PlaceOrderInput) validate() error {
	switch {
	case blank(in.MealName):
		return missing("mealName")
	case in.Price == 0:
		return missing("price")
	case in.Price < 0:
		return invalid("price", "must be positive")
	case in.Quantity == 0:
		return missing("quantity")
	case in.Quantity < 0:
		return invalid("quantity", "must be positive")
	case blank(in.ChefID):
		return missing("chefId")
	case blank(in.UserEmail):
		return missing("userEmail")
	case blank(in.UserAddress):
		return missing("userAddress")
	}
	return nil
}

type RecordPaymentInput struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
	UserEmail     string  `json:"userEmail"`
	MealName      string  `json:"mealName"`
}

// TransitionResult reports an applied status change
type TransitionResult struct {
	OrderID string             `json:"orderId"`
	From    models.OrderStatus `json:"previousStatus"`
	To      models.OrderStatus `json:"currentStatus"`
}

// OrderEngine owns the order state machine and the order ↔ payment linkage
type OrderEngine struct {
	store       *store.Store
	orders      *store.Orders
	payments    *store.Payments
	projections *store.Projections
	gateway     PaymentGateway
	deps        Deps
}

// NewOrderEngine wires the engine to its collections. gateway may be nil, in
// which case payment intents are unavailable.
func NewOrderEngine(s *store.Store, gateway PaymentGateway, deps Deps) *OrderEngine {
	deps = deps.withDefaults()
	deps.Log = deps.Log.Named("orders")
	return &OrderEngine{
		store:       s,
		orders:      s.Orders,
		payments:    s.Payments,
		projections: s.Projections,
		gateway:     gateway,
		deps:        deps,
	}
}

// Place validates and persists a new pending, unpaid order
func (e *OrderEngine) Place(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	order := &models.Order{
		MealID:        strings.TrimSpace(in.MealID),
		MealName:      strings.TrimSpace(in.MealName),
		Price:         in.Price,
		Quantity:      in.Quantity,
		ChefID:        strings.TrimSpace(in.ChefID),
		UserEmail:     strings.TrimSpace(in.UserEmail),
		UserAddress:   strings.TrimSpace(in.UserAddress),
		OrderStatus:   models.StatusPending,
		PaymentStatus: models.PaymentPending,
		OrderTime:     e.deps.Now(),
	}
	if err := e.orders.Create(ctx, order); err != nil {
		return nil, storeErr("create order", err)
	}

	e.deps.publish(ctx, events.New(events.OrderPlaced, order.ID, map[string]any{
		"chefId":    order.ChefID,
		"userEmail": order.UserEmail,
		"mealName":  order.MealName,
		"quantity":  order.Quantity,
		"price":     order.Price,
	}))
	return order, nil
}

// List returns the actionable orders (pending or accepted), optionally for one chef.
// Terminal orders never appear here.
func (e *OrderEngine) List(ctx context.Context, chefID string) ([]models.Order, error) {
	orders, err := e.orders.List(ctx, store.OrderFilter{
		Statuses: models.ActiveOrderStatuses,
		ChefID:   strings.TrimSpace(chefID),
	})
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

// ListAll is the administrative view over every order, with an optional
// status filter.
func (e *OrderEngine) ListAll(ctx context.Context, status, chefID string) ([]models.Order, error) {
	f := store.OrderFilter{ChefID: strings.TrimSpace(chefID)}
	if status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			return nil, invalid("status", "must be one of pending, accepted, rejected, delivered")
		}
		f.Statuses = []models.OrderStatus{s}
	}
	orders, err := e.orders.List(ctx, f)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

func (e *OrderEngine) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := e.orders.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("order", id)
	}
	if err != nil {
		return nil, storeErr("get order", err)
	}
	return order, nil
}

// UpdateStatus applies one edge of the order state machine. The write is
// conditional on the status read here, so a concurrent change makes this call
// fail with an invalid transition instead of overwriting it.
func (e *OrderEngine) UpdateStatus(ctx context.Context, id, target, note string) (*TransitionResult, error) {
	to := models.OrderStatus(target)
	if !statemachine.IsOrderTarget(to) {
		return nil, invalid("orderStatus", "must be one of accepted, rejected, delivered")
	}

	order, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.OrderStatus

	if err := statemachine.CanTransitionOrder(from, to); err != nil {
		metrics.RecordTransition(string(from), string(to), "refused")
		return nil, err
	}

	applied, err := e.orders.Transition(ctx, id, from, to, note)
	if err != nil {
		return nil, storeErr("update order status", err)
	}
	if !applied {
		metrics.RecordTransition(string(from), string(to), "conflict")
		current, err := e.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := statemachine.CanTransitionOrder(current.OrderStatus, to); err != nil {
			return nil, err
		}
		return nil, &statemachine.TransitionError{Machine: "order", From: string(current.OrderStatus), To: string(to)}
	}

	metrics.RecordTransition(string(from), string(to), "applied")
	e.deps.Log.Info("order status changed",
		zap.String("order_id", id), zap.String("from", string(from)), zap.String("to", string(to)))
	e.deps.publish(ctx, events.New(events.OrderStatusChanged, id, map[string]any{
		"chefId": order.ChefID,
		"from":   from,
		"to":     to,
	}))
	return &TransitionResult{OrderID: id, From: from, To: to}, nil
}

// Delete removes an order regardless of its status
func (e *OrderEngine) Delete(ctx context.Context, id string) error {
	deleted, err := e.orders.Delete(ctx, id)
	if err != nil {
		return storeErr("delete order", err)
	}
	if !deleted {
		return notFound("order", id)
	}
	e.deps.publish(ctx, events.New(events.OrderDeleted, id, nil))
	return nil
}

func (e *OrderEngine) History(ctx context.Context, id string) ([]models.OrderStatusHistory, error) {
	if _, err := e.Get(ctx, id); err != nil {
		return nil, err
	}
	history, err := e.orders.History(ctx, id)
	if err != nil {
		return nil, storeErr("order history", err)
	}
	return history, nil
}

// RecordPayment stores the payment and marks the order paid. The order is not
// required to exist, and recording twice stores two payments.
//
// In two-phase mode the payment insert is the source of truth: if marking the
// order fails afterwards the caller still succeeds and the flag is queued for
// the reconciler. In transactional mode both writes commit or neither does.
func (e *OrderEngine) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	if blank(in.OrderID) {
		return nil, missing("orderId")
	}
	if in.Amount < 0 {
		return nil, invalid("amount", "must not be negative")
	}

	payment := &models.Payment{
		OrderID:       strings.TrimSpace(in.OrderID),
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
		UserEmail:     in.UserEmail,
		MealName:      in.MealName,
		PaymentTime:   e.deps.Now(),
	}

	var err error
	if e.deps.Consistency == config.Transactional {
		err = e.recordPaymentAtomically(ctx, payment)
	} else {
		err = e.recordPaymentTwoPhase(ctx, payment)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment()
	e.deps.publish(ctx, events.New(events.PaymentRecorded, payment.OrderID, map[string]any{
		"paymentId":     payment.ID,
		"amount":        payment.Amount,
		"transactionId": payment.TransactionID,
	}))
	return payment, nil
}

func (e *OrderEngine) recordPaymentAtomically(ctx context.Context, payment *models.Payment) error {
	err := e.store.Atomically(ctx, func(tx *store.Store) error {
		if err := tx.Payments.Create(ctx, payment); err != nil {
			return err
		}
		found, err := tx.Orders.SetPaymentStatus(ctx, payment.OrderID, models.PaymentPaid)
		if err == nil && !found {
			e.deps.Log.Warn("payment references unknown order", zap.String("order_id", payment.OrderID))
		}
		return err
	})
	if err != nil {
		return storeErr("record payment", err)
	}
	return nil
}

func (e *OrderEngine) recordPaymentTwoPhase(ctx context.Context, payment *models.Payment) error {
	if err := e.payments.Create(ctx, payment); err != nil {
		return storeErr("record payment", err)
	}

	found, err := e.orders.SetPaymentStatus(ctx, payment.OrderID, models.PaymentPaid)
	switch {
	case err != nil:
		e.deps.deferProjection(ctx, e.projections, models.PendingProjection{
			Kind:     models.ProjectionOrderPaid,
			TargetID: payment.OrderID,
			Value:    string(models.PaymentPaid),
		}, err)
	case !found:
		e.deps.Log.Warn("payment references unknown order", zap.String("order_id", payment.OrderID))
	}
	return nil
}

// CreatePaymentIntent hands the order to the payment gateway and returns the
// checkout redirect. No order state changes here.
func (e *OrderEngine) CreatePaymentIntent(ctx context.Context, intent models.PaymentIntent) (string, error) {
	switch {
	case blank(intent.OrderID):
		return "", missing("orderId")
	case blank(intent.MealName):
		return "", missing("mealName")
	case intent.Price <= 0:
		return "", invalid("price", "must be positive")
	}
	if e.gateway == nil {
		return "", fmt.Errorf("%w: payment gateway not configured", ErrUnavailable)
	}

	url, err := e.gateway.CreateCheckout(ctx, intent)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return url, nil
}
