package handlers

import (
	"net/http"

	"localchef-api/middleware"
	"localchef-api/service"

	"github.com/gin-gonic/gin"
)

// CreateUser registers a user with role "user"; known emails are left alone
func (h *Handler) CreateUser(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	user, created, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "Failed to save user")
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "User already exists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User created", "userId": user.ID})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserRole answers only for the caller's own email
func (h *Handler) GetUserRole(c *gin.Context) {
	role, err := h.users.GetRole(c.Request.Context(), middleware.GetIdentity(c), c.Param("email"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch user role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}
