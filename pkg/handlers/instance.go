package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// ListInstances returns the group's instances inside a window. from and to
// default to the configured distribution window starting now.
func (h *Handler) ListInstances() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		from, ok := parseTimeParam(c, "from", now)
		if !ok {
			return
		}
		to, ok := parseTimeParam(c, "to", from.AddDate(0, 0, h.cfg.DistributionWindowDays))
		if !ok {
			return
		}

		instances, err := h.database.ListInstancesBetween(c.Request.Context(), h.cfg.GroupID, from, to)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, instances)
	}
}

// GenerateInstances expands the configured routines into stored instances
func (h *Handler) GenerateInstances() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			From   time.Time `json:"from"`
			To     time.Time `json:"to"`
			DryRun bool      `json:"dryRun"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid generate payload"})
			return
		}
		if body.From.IsZero() || body.To.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
			return
		}

		result, err := services.GenerateInstances(c.Request.Context(), h.database, h.cfg, h.logger, body.From, body.To, body.DryRun)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"from":      result.From,
			"to":        result.To,
			"generated": result.Generated,
			"skipped":   result.Skipped,
			"dryRun":    result.DryRun,
		})
	}
}

// ClaimInstance assigns an open instance to a member, subject to eligibility
func (h *Handler) ClaimInstance() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			MemberID string `json:"memberId"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim payload"})
			return
		}
		if body.MemberID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "memberId is required"})
			return
		}

		result, err := services.ClaimInstance(c.Request.Context(), h.database, h.cfg, h.logger, c.Param("id"), body.MemberID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"instance": result.Instance,
			"member":   result.Member,
		})
	}
}

// ReleaseInstance returns an assigned instance to the pool. memberId must
// match the holder; omitting it is an operator override.
func (h *Handler) ReleaseInstance() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			MemberID string `json:"memberId"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.BindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid release payload"})
				return
			}
		}

		result, err := services.ReleaseInstance(c.Request.Context(), h.database, h.logger, c.Param("id"), body.MemberID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"instance":       result.Instance,
			"releasedMember": result.ReleasedMember,
		})
	}
}

// DistributeUnassigned runs the automatic distributor over the configured
// window
func (h *Handler) DistributeUnassigned() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			At     *time.Time `json:"at"`
			DryRun bool       `json:"dryRun"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.BindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid distribute payload"})
				return
			}
		}
		now := time.Now().UTC()
		if body.At != nil {
			now = *body.At
		}

		result, err := services.DistributeUnassigned(c.Request.Context(), h.database, h.cfg, h.logger, now, body.DryRun)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"windowStart":    result.WindowStart,
			"windowEnd":      result.WindowEnd,
			"assignments":    result.Assignments,
			"unassigned":     result.Unassigned,
			"conflicts":      result.Conflicts,
			"claimedCount":   result.ClaimedCount,
			"finalScores":    result.FinalScores,
			"fairnessBefore": result.FairnessBefore,
			"fairnessAfter":  result.FairnessAfter,
			"dryRun":         result.DryRun,
		})
	}
}
