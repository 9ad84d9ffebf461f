package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"localchef-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db)
}

func sampleOrder(chef string, status models.OrderStatus) *models.Order {
	return &models.Order{
		MealName:      "Curry",
		Price:         10,
		Quantity:      2,
		ChefID:        chef,
		UserEmail:     "a@x.com",
		UserAddress:   "1 Main St",
		OrderStatus:   status,
		PaymentStatus: models.PaymentPending,
		OrderTime:     time.Now().UTC(),
	}
}

func TestOrders_CreateGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := sampleOrder("c1", models.StatusPending)
	require.NoError(t, s.Orders.Create(ctx, o))
	require.NotEmpty(t, o.ID)

	got, err := s.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Curry", got.MealName)
	assert.Equal(t, models.StatusPending, got.OrderStatus)

	_, err = s.Orders.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOrders_ListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, o := range []*models.Order{
		sampleOrder("c1", models.StatusPending),
		sampleOrder("c1", models.StatusAccepted),
		sampleOrder("c1", models.StatusDelivered),
		sampleOrder("c2", models.StatusPending),
		sampleOrder("c2", models.StatusRejected),
	} {
		require.NoError(t, s.Orders.Create(ctx, o))
	}

	all, err := s.Orders.List(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	active, err := s.Orders.List(ctx, OrderFilter{Statuses: models.ActiveOrderStatuses})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	c1, err := s.Orders.List(ctx, OrderFilter{Statuses: models.ActiveOrderStatuses, ChefID: "c1"})
	require.NoError(t, err)
	assert.Len(t, c1, 2)
	for _, o := range c1 {
		assert.Equal(t, "c1", o.ChefID)
	}
}

func TestOrders_TransitionIsConditional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := sampleOrder("c1", models.StatusPending)
	require.NoError(t, s.Orders.Create(ctx, o))

	ok, err := s.Orders.Transition(ctx, o.ID, models.StatusPending, models.StatusAccepted, "on it")
	require.NoError(t, err)
	assert.True(t, ok)

	// stale "from" no longer matches
	ok, err = s.Orders.Transition(ctx, o.ID, models.StatusPending, models.StatusRejected, "")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.OrderStatus)

	history, err := s.Orders.History(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].FromStatus)
	assert.Equal(t, models.StatusAccepted, history[0].ToStatus)
	assert.Equal(t, "on it", history[0].Note)
}

func TestOrders_DeleteAndPaymentStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := sampleOrder("c1", models.StatusPending)
	require.NoError(t, s.Orders.Create(ctx, o))

	found, err := s.Orders.SetPaymentStatus(ctx, o.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Orders.SetPaymentStatus(ctx, "nope", models.PaymentPaid)
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := s.Orders.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Orders.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPayments_Total(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total, err := s.Payments.Total(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, s.Payments.Create(ctx, &models.Payment{OrderID: "o1", Amount: 12.5, PaymentTime: time.Now()}))
	require.NoError(t, s.Payments.Create(ctx, &models.Payment{OrderID: "o1", Amount: 7.5, PaymentTime: time.Now()}))

	total, err = s.Payments.Total(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, total, 0.0001)

	list, err := s.Payments.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUsers_RoleAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "a@x.com", Name: "Ana", Role: models.RoleUser}
	require.NoError(t, s.Users.Create(ctx, u))

	dup := &models.User{Email: "a@x.com", Name: "Other", Role: models.RoleUser}
	assert.ErrorIs(t, s.Users.Create(ctx, dup), ErrDuplicate, "email is unique")

	ok, err := s.Users.SetRole(ctx, u.ID, models.RoleChef)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, got.Role)

	_, err = s.Users.GetByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	chefs, err := s.Users.List(ctx, models.RoleChef)
	require.NoError(t, err)
	assert.Len(t, chefs, 1)
}

func TestRequests_SetStatusConditional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &models.RoleRequest{UserID: "u1", UserName: "Ana", UserEmail: "a@x.com", RequestType: models.RoleChef, RequestStatus: models.RequestPending, RequestTime: time.Now()}
	require.NoError(t, s.Requests.Create(ctx, r))

	ok, err := s.Requests.SetStatus(ctx, r.ID, models.RequestPending, models.RequestAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Requests.SetStatus(ctx, r.ID, models.RequestPending, models.RequestRejected)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAtomically_RollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "a@x.com", Role: models.RoleUser}
	require.NoError(t, s.Users.Create(ctx, u))

	boom := errors.New("boom")
	err := s.Atomically(ctx, func(tx *Store) error {
		if _, err := tx.Users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestProjections_Queue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Projections.Add(ctx, &models.PendingProjection{
		Kind: models.ProjectionOrderPaid, TargetID: "o1", Value: "Paid", LastError: "timeout",
	}))
	require.NoError(t, s.Projections.Add(ctx, &models.PendingProjection{
		Kind: models.ProjectionRequestStatus, TargetID: "r1", Value: "accepted", Undo: "user", LastError: "timeout",
	}))

	n, err := s.Projections.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	pending, err := s.Projections.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ProjectionOrderPaid, pending[0].Kind)
	assert.Equal(t, "user", pending[1].Undo)

	require.NoError(t, s.Projections.Failed(ctx, pending[0].ID, "still down"))
	require.NoError(t, s.Projections.Done(ctx, pending[1].ID))

	pending, err = s.Projections.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "still down", pending[0].LastError)
}

func TestCatalog_FavoritesDedupe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fav := models.Favorite{UserEmail: "a@x.com", MealID: "m1", MealName: "Curry", ChefID: "c1", ChefName: "Raj", Price: 10, Image: "i"}
	first := fav
	created, err := s.Catalog.AddFavorite(ctx, &first)
	require.NoError(t, err)
	assert.True(t, created)

	second := fav
	created, err = s.Catalog.AddFavorite(ctx, &second)
	require.NoError(t, err)
	assert.False(t, created)

	favs, err := s.Catalog.Favorites(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}

func TestCatalog_MealIngredientsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	meal := &models.Meal{Name: "Curry", Category: "Indian", Price: 10, Chef: "Raj", Image: "i", ChefID: "c1", DeliveryArea: "North", EstimatedDeliveryTime: "30m", Ingredients: []string{"rice", "lentils"}}
	require.NoError(t, s.Catalog.CreateMeal(ctx, meal))

	got, err := s.Catalog.Meal(ctx, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "lentils"}, got.Ingredients)
}
