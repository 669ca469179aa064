package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// ListOccasions returns the group's selection occasions
func (h *Handler) ListOccasions() gin.HandlerFunc {
	return func(c *gin.Context) {
		occasions, err := h.database.ListOccasions(c.Request.Context(), h.cfg.GroupID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, occasions)
	}
}

// GetOccasion returns one selection occasion
func (h *Handler) GetOccasion() gin.HandlerFunc {
	return func(c *gin.Context) {
		occasion, err := h.database.GetOccasion(c.Request.Context(), c.Param("id"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, occasion)
	}
}

// PreviewTurnOrder computes a turn order without storing anything
func (h *Handler) PreviewTurnOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Algorithm string   `json:"algorithm"`
			Pool      []string `json:"pool"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preview payload"})
			return
		}

		result, err := services.PreviewTurnOrder(c.Request.Context(), h.database, h.cfg, h.logger, body.Algorithm, body.Pool, time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"algorithm":    result.Algorithm,
			"participants": result.Participants,
			"pool":         result.Pool,
			"order":        result.Order,
			"quotas":       result.Quotas,
			"warnings":     result.Warnings,
		})
	}
}

// CommitOccasion creates a selection occasion with a computed turn order.
// closesAt defaults to the end of the distribution window.
func (h *Handler) CommitOccasion() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Algorithm string    `json:"algorithm"`
			Pool      []string  `json:"pool"`
			ClosesAt  time.Time `json:"closesAt"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occasion payload"})
			return
		}
		now := time.Now().UTC()
		if body.ClosesAt.IsZero() {
			body.ClosesAt = now.AddDate(0, 0, h.cfg.DistributionWindowDays)
		}

		result, err := services.CommitOccasion(c.Request.Context(), h.database, h.cfg, h.logger, body.Algorithm, body.Pool, body.ClosesAt, now)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"occasion": result.Occasion,
			"warnings": result.Warnings,
		})
	}
}

// ActivateOccasion recomputes the order against the current roster and
// freezes the occasion for picking
func (h *Handler) ActivateOccasion() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := services.ActivateOccasion(c.Request.Context(), h.database, h.cfg, h.logger, c.Param("id"), time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"occasion": result.Occasion,
			"warnings": result.Warnings,
		})
	}
}

// PickInstance records the current turn member's pick
func (h *Handler) PickInstance() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			MemberID   string `json:"memberId"`
			InstanceID string `json:"instanceId"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pick payload"})
			return
		}
		if body.MemberID == "" || body.InstanceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "memberId and instanceId are required"})
			return
		}

		result, err := services.PickInstance(c.Request.Context(), h.database, h.logger, c.Param("id"), body.MemberID, body.InstanceID, time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"occasion":      result.Occasion,
			"instance":      result.Instance,
			"nextTurn":      result.NextTurn,
			"poolExhausted": result.PoolExhausted,
			"suggested":     result.Suggested,
		})
	}
}

// CompleteOccasion closes an active occasion and records its history
func (h *Handler) CompleteOccasion() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := services.CompleteOccasion(c.Request.Context(), h.database, h.logger, c.Param("id"), time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"occasion":         result.Occasion,
			"history":          result.History,
			"unpicked":         result.Unpicked,
			"alreadyCompleted": result.AlreadyCompleted,
		})
	}
}

// CancelOccasion discards an occasion that has not gone active
func (h *Handler) CancelOccasion() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.CancelOccasion(c.Request.Context(), h.database, h.logger, c.Param("id")); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": true})
	}
}
