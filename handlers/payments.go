package handlers

import (
	"net/http"

	"localchef-api/models"
	"localchef-api/service"

	"github.com/gin-gonic/gin"
)

// RecordPayment stores a payment and marks its order paid
func (h *Handler) RecordPayment(c *gin.Context) {
	var in service.RecordPaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	payment, err := h.orders.RecordPayment(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "Failed to save payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment recorded successfully", "paymentId": payment.ID})
}

type checkoutRequest struct {
	OrderID  string  `json:"orderId"`
	MealName string  `json:"mealName"`
	Price    float64 `json:"price"`
}

// CreateCheckoutSession returns the hosted checkout URL for an order
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	url, err := h.orders.CreatePaymentIntent(c.Request.Context(), models.PaymentIntent{
		OrderID:  req.OrderID,
		MealName: req.MealName,
		Price:    req.Price,
	})
	if err != nil {
		h.respondError(c, err, "Failed to create checkout session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
