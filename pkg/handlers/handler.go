package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// Handler carries the dependencies shared by all HTTP handlers
type Handler struct {
	database db.Database
	cfg      *config.Config
	logger   *zap.Logger
}

// New creates a Handler backed by the given database
func New(database db.Database, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{database: database, cfg: cfg, logger: logger}
}

// RegisterRoutes attaches every API route to the router group
func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/members", h.ListMembers())
	router.GET("/members/:id", h.GetMember())
	router.PUT("/members/:id", h.UpsertMember())

	router.GET("/instances", h.ListInstances())
	router.POST("/instances/generate", h.GenerateInstances())
	router.POST("/instances/:id/claim", h.ClaimInstance())
	router.POST("/instances/:id/release", h.ReleaseInstance())

	router.POST("/distribute", h.DistributeUnassigned())

	router.GET("/occasions", h.ListOccasions())
	router.POST("/occasions", h.CommitOccasion())
	router.POST("/occasions/preview", h.PreviewTurnOrder())
	router.GET("/occasions/:id", h.GetOccasion())
	router.POST("/occasions/:id/activate", h.ActivateOccasion())
	router.POST("/occasions/:id/picks", h.PickInstance())
	router.POST("/occasions/:id/complete", h.CompleteOccasion())
	router.DELETE("/occasions/:id", h.CancelOccasion())

	router.GET("/escalations", h.ListEscalations())
	router.GET("/fairness", h.FairnessReport())
}

// Health reports liveness
func (h *Handler) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// respondError maps domain errors onto HTTP status codes. Validation problems
// are the caller's fault, lost claim races are conflicts, unknown IDs are 404s
// and everything else is a server fault.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, db.ErrInstanceUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, db.ErrMemberNotFound),
		errors.Is(err, db.ErrInstanceNotFound),
		errors.Is(err, db.ErrOccasionNotFound),
		errors.Is(err, db.ErrHistoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseTimeParam reads a query parameter as RFC 3339 or a plain date,
// falling back to fallback when the parameter is absent
func parseTimeParam(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be RFC 3339 or YYYY-MM-DD"})
	return time.Time{}, false
}
