package handlers

import (
	"net/http"

	"localchef-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LocalChef API is running",
		"docs":    "/state-machine",
		"health":  "/health",
		"roles":   []string{"user", "chef", "admin"},
	})
}

// Health pings every dependency and reports the reconciliation backlog
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{}
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			h.log.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	body := gin.H{"status": "healthy", "service": "localchef-api", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.backlog != nil {
		if n, err := h.backlog(ctx); err == nil {
			body["pendingProjections"] = n
		}
	}
	c.JSON(status, body)
}

// GetStateMachineInfo describes both state machines
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"order": gin.H{
			"transitions":    statemachine.OrderTransitions(),
			"terminalStates": statemachine.OrderTerminalStates(),
			"initialState":   statemachine.OrderInitialStates()[0],
		},
		"roleRequest": gin.H{
			"transitions":    statemachine.RequestTransitions(),
			"terminalStates": statemachine.RequestTerminalStates(),
			"initialState":   statemachine.RequestInitialStates()[0],
		},
	})
}

// Statistics returns the dashboard aggregate
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.stats.Statistics(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
