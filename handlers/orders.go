package handlers

import (
	"net/http"

	"localchef-api/models"
	"localchef-api/service"

	"github.com/gin-gonic/gin"
)

// PlaceOrder creates a pending, unpaid order
func (h *Handler) PlaceOrder(c *gin.Context) {
	var in service.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	order, err := h.orders.Place(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully!", "orderId": order.ID})
}

// ListOrders returns pending and accepted orders, optionally for one chef
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), c.Query("chefId"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	OrderStatus string `json:"orderStatus"`
	Note        string `json:"note"`
}

// UpdateOrderStatus applies one edge of the order state machine
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	res, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.OrderStatus, req.Note)
	if err != nil {
		h.respondError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Order status updated to " + string(res.To),
		"orderId":        res.OrderID,
		"previousStatus": res.From,
		"currentStatus":  res.To,
	})
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// OrderHistory returns the audit trail of accepted transitions
func (h *Handler) OrderHistory(c *gin.Context) {
	history, err := h.orders.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch order history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "count": len(history), "history": history})
}

// AdminListOrders returns every order regardless of status, with a
// per-status summary over the whole collection.
func (h *Handler) AdminListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.orders.ListAll(ctx, c.Query("status"), c.Query("chefId"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch orders")
		return
	}
	summary, err := h.stats.OrderSummary(ctx)
	if err != nil {
		h.respondError(c, err, "Failed to fetch orders")
		return
	}

	var paidRevenue float64
	for _, o := range orders {
		if o.PaymentStatus == models.PaymentPaid {
			paidRevenue += o.Price * float64(o.Quantity)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"orderSummary": summary,
		"paidRevenue":  paidRevenue,
		"count":        len(orders),
		"orders":       orders,
	})
}
