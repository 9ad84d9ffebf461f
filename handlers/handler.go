// Package handlers adapts HTTP requests to the order engine, the role
// workflow and the catalog.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"localchef-api/middleware"
	"localchef-api/service"
	"localchef-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Probe reports the health of one dependency
type Probe func(ctx context.Context) error

// Handler holds everything the HTTP layer calls into
type Handler struct {
	orders  *service.OrderEngine
	roles   *service.RoleWorkflow
	users   *service.Users
	stats   *service.Reporter
	catalog *store.Catalog
	tokens  *middleware.TokenIssuer
	backlog func(ctx context.Context) (int, error)
	probes  map[string]Probe
	log     *zap.Logger

	secureCookie bool
}

type Options struct {
	Orders  *service.OrderEngine
	Roles   *service.RoleWorkflow
	Users   *service.Users
	Stats   *service.Reporter
	Catalog *store.Catalog
	Tokens  *middleware.TokenIssuer
	// Backlog reports queued secondary writes on /health; optional
	Backlog func(ctx context.Context) (int, error)
	Probes  map[string]Probe
	Log     *zap.Logger
	// SecureCookie marks the session cookie Secure (release mode)
	SecureCookie bool
}

func New(o Options) *Handler {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return &Handler{
		orders:       o.Orders,
		roles:        o.Roles,
		users:        o.Users,
		stats:        o.Stats,
		catalog:      o.Catalog,
		tokens:       o.Tokens,
		backlog:      o.Backlog,
		probes:       o.Probes,
		log:          o.Log.Named("handlers"),
		secureCookie: o.SecureCookie,
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Store and
// unknown failures are logged with their cause and answered generically.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(nf.Error())})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fallback})
	case errors.Is(err, service.ErrGateway):
		h.log.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	default:
		h.log.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
