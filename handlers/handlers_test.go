package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"localchef-api/config"
	"localchef-api/handlers"
	"localchef-api/middleware"
	"localchef-api/models"
	"localchef-api/routes"
	"localchef-api/service"
	"localchef-api/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(context.Background(), "", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	st := store.New(db)

	tokens := middleware.NewTokenIssuer([]byte("test-secret"), time.Hour)
	deps := service.Deps{}
	h := handlers.New(handlers.Options{
		Orders:  service.NewOrderEngine(st, nil, deps),
		Roles:   service.NewRoleWorkflow(st, config.PolicyAdmin, deps),
		Users:   service.NewUsers(st, deps),
		Stats:   service.NewReporter(st, nil, nil),
		Catalog: st.Catalog,
		Tokens:  tokens,
		Backlog: service.NewReconciler(st, nil).Backlog,
		Probes:  map[string]handlers.Probe{"database": st.Ping},
	})

	r := gin.New()
	routes.SetupRoutes(r, h, routes.Options{Tokens: tokens})
	return &api{t: t, router: r, store: st}
}

func (a *api) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// login seeds a user and returns the session cookie POST /jwt sets for them
func (a *api) login(id, email string, role models.UserRole) *http.Cookie {
	a.t.Helper()
	require.NoError(a.t, a.store.Users.Create(context.Background(), &models.User{ID: id, Email: email, Name: id, Role: role}))
	rec := a.do(http.MethodPost, "/jwt", gin.H{"email": email})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			assert.True(a.t, c.HttpOnly)
			return c
		}
	}
	a.t.Fatal("no session cookie set")
	return nil
}

var curry = gin.H{
	"mealName":    "Curry",
	"price":       10,
	"quantity":    2,
	"chefId":      "c1",
	"userEmail":   "a@x.com",
	"userAddress": "1 Main St",
}

func TestOrderScenario(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/orders", curry)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decode(t, rec)["orderId"].(string)
	require.NotEmpty(t, id)

	order, err := a.store.Orders.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)

	rec = a.do(http.MethodPatch, "/orders/"+id+"/status", gin.H{"orderStatus": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPatch, "/orders/"+id+"/status", gin.H{"orderStatus": "accepted"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "accepted → accepted")

	rec = a.do(http.MethodPatch, "/orders/"+id+"/status", gin.H{"orderStatus": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delivered", decode(t, rec)["currentStatus"])

	rec = a.do(http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = a.do(http.MethodGet, "/orders/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["count"])
}

func TestPlaceOrder_MissingField(t *testing.T) {
	a := newAPI(t)

	body := gin.H{}
	for k, v := range curry {
		body[k] = v
	}
	delete(body, "chefId")

	rec := a.do(http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "chefId", decode(t, rec)["field"])

	n, err := a.store.Orders.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderStatusErrors(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPatch, "/orders/nope/status", gin.H{"orderStatus": "cooking"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPatch, "/orders/nope/status", gin.H{"orderStatus": "accepted"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodDelete, "/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayments(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/payments", gin.H{"amount": 20})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "orderId", decode(t, rec)["field"])

	rec = a.do(http.MethodPost, "/orders", curry)
	id, _ := decode(t, rec)["orderId"].(string)

	rec = a.do(http.MethodPost, "/payments", gin.H{"orderId": id, "amount": 20, "transactionId": "cs_1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode(t, rec)["paymentId"])

	order, err := a.store.Orders.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)

	rec = a.do(http.MethodPost, "/create-checkout-session", gin.H{"orderId": id, "mealName": "Curry", "price": 20})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoleRequestScenario(t *testing.T) {
	a := newAPI(t)
	adminCookie := a.login("admin1", "root@x.com", models.RoleAdmin)
	require.NoError(t, a.store.Users.Create(context.Background(), &models.User{ID: "u1", Email: "a@x.com", Name: "Ana", Role: models.RoleUser}))

	rec := a.do(http.MethodPost, "/role-request", gin.H{"userId": "u1", "userName": "Ana", "userEmail": "a@x.com", "requestType": "chef"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reqID, _ := decode(t, rec)["requestId"].(string)

	rec = a.do(http.MethodPatch, "/role-request/"+reqID, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPatch, "/role-request/"+reqID, gin.H{"action": "accept"}, &http.Cookie{Name: "token", Value: "garbage"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, "/role-request/"+reqID, gin.H{"action": "promote"}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPatch, "/role-request/missing", gin.H{"action": "accept"}, adminCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPatch, "/role-request/"+reqID, gin.H{"action": "accept"}, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Request accepted, role updated to chef", decode(t, rec)["message"])

	user, err := a.store.Users.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, user.Role)

	req, err := a.store.Requests.Get(context.Background(), reqID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, req.RequestStatus)

	rec = a.do(http.MethodGet, "/role-requests", nil, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var reqs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reqs))
	assert.Len(t, reqs, 1)
}

func TestNonAdminIsRefused(t *testing.T) {
	a := newAPI(t)
	cookie := a.login("u1", "a@x.com", models.RoleUser)

	rec := a.do(http.MethodGet, "/role-requests", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPut, "/users/role/u1", gin.H{"role": "admin"}, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodGet, "/admin/orders", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsersAndSession(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/users", gin.H{"email": "a@x.com", "name": "Ana", "uid": "fb-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User created", decode(t, rec)["message"])

	rec = a.do(http.MethodPost, "/users", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User already exists", decode(t, rec)["message"])

	rec = a.do(http.MethodPost, "/jwt", gin.H{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/jwt", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	rec = a.do(http.MethodGet, "/users/role/a@x.com", nil, cookies[0])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", decode(t, rec)["role"])

	rec = a.do(http.MethodGet, "/users/role/b@x.com", nil, cookies[0])
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminOrdersAndStatistics(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin1", "root@x.com", models.RoleAdmin)

	rec := a.do(http.MethodPost, "/orders", curry)
	id, _ := decode(t, rec)["orderId"].(string)
	a.do(http.MethodPatch, "/orders/"+id+"/status", gin.H{"orderStatus": "rejected"})
	a.do(http.MethodPost, "/orders", curry)

	rec = a.do(http.MethodGet, "/admin/orders", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["count"])
	summary, _ := body["orderSummary"].(map[string]any)
	assert.EqualValues(t, 1, summary["rejected"])
	assert.EqualValues(t, 1, summary["pending"])

	rec = a.do(http.MethodGet, "/admin/orders?status=shipped", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/statistics", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/statistics", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)
	assert.EqualValues(t, 1, stats["totalUsers"])
	assert.EqualValues(t, 1, stats["ordersPending"])
	assert.EqualValues(t, 0, stats["ordersDelivered"])
}

func TestCatalog(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/meals", gin.H{"name": "Curry"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/meals", gin.H{
		"name": "Curry", "category": "Dinner", "price": 12.5, "chef": "Ana", "image": "curry.png",
		"chefId": "c1", "deliveryArea": "Dhaka", "estimatedDeliveryTime": "30 min",
		"ingredients": []string{"rice", "chicken"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	mealID, _ := decode(t, rec)["mealId"].(string)

	rec = a.do(http.MethodGet, "/meals/"+mealID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"rice", "chicken"}, decode(t, rec)["ingredients"])

	rec = a.do(http.MethodGet, "/meals/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	fav := gin.H{"userEmail": "a@x.com", "mealId": mealID, "mealName": "Curry", "chefId": "c1", "chefName": "Ana", "price": 12.5, "image": "curry.png"}
	rec = a.do(http.MethodPost, "/favorites", fav)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(http.MethodPost, "/favorites", fav)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meal already in favorites", decode(t, rec)["message"])

	rec = a.do(http.MethodPost, "/reviews", gin.H{"foodId": mealID, "reviewerName": "Bo", "reviewerImage": "bo.png", "rating": 5, "comment": "great"})
	require.Equal(t, http.StatusCreated, rec.Code)
	reviewID, _ := decode(t, rec)["reviewId"].(string)

	rec = a.do(http.MethodDelete, "/reviews/"+reviewID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodDelete, "/reviews/"+reviewID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServiceEndpoints(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 0, body["pendingProjections"])

	rec = a.do(http.MethodGet, "/state-machine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order, _ := decode(t, rec)["order"].(map[string]any)
	transitions, _ := order["transitions"].([]any)
	assert.Len(t, transitions, 3)
	assert.Equal(t, "pending", order["initialState"])
	assert.ElementsMatch(t, []any{"rejected", "delivered"}, order["terminalStates"])
}
