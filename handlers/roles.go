package handlers

import (
	"net/http"

	"localchef-api/middleware"
	"localchef-api/models"
	"localchef-api/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitRoleRequest(c *gin.Context) {
	var in service.SubmitRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	req, err := h.roles.Submit(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "Failed to submit request")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request submitted successfully!", "requestId": req.ID})
}

type resolveRequest struct {
	Action string `json:"action"`
}

// ResolveRoleRequest accepts or rejects a pending role request
func (h *Handler) ResolveRoleRequest(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	res, err := h.roles.Resolve(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), req.Action)
	if err != nil {
		h.respondError(c, err, "Failed to process request")
		return
	}

	msg := "Request rejected"
	if res.Request.RequestStatus == models.RequestAccepted {
		msg = "Request accepted, role updated to " + string(res.Role)
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "request": res.Request})
}

func (h *Handler) ListRoleRequests(c *gin.Context) {
	reqs, err := h.roles.List(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		h.respondError(c, err, "Failed to fetch requests")
		return
	}
	c.JSON(http.StatusOK, reqs)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole is the administrative override that bypasses role requests
func (h *Handler) SetUserRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if err := h.roles.SetRole(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), req.Role); err != nil {
		h.respondError(c, err, "Failed to update role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role updated"})
}
