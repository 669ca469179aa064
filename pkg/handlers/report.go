package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tackroom/fairshare/pkg/core/services"
)

// ListEscalations returns the instances needing operator attention
func (h *Handler) ListEscalations() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := services.ListEscalations(c.Request.Context(), h.database, h.cfg, h.logger, time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"windowStart": result.WindowStart,
			"windowEnd":   result.WindowEnd,
			"escalations": escalationsPayload(result.Escalations),
		})
	}
}

// FairnessReport returns the per-member standings and the group fairness index
func (h *Handler) FairnessReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := services.FairnessReport(c.Request.Context(), h.database, h.cfg, h.logger, time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}

		standings := make([]gin.H, 0, len(result.Standings))
		for _, s := range result.Standings {
			standings = append(standings, gin.H{
				"member":     s.Member,
				"points":     s.Points,
				"hasHistory": s.HasHistory,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"horizonStart":  result.HorizonStart,
			"standings":     standings,
			"fairnessIndex": result.FairnessIndex,
		})
	}
}

func escalationsPayload(escalations []services.Escalation) []gin.H {
	payload := make([]gin.H, 0, len(escalations))
	for _, esc := range escalations {
		entry := gin.H{
			"instance": esc.Instance,
			"reason":   esc.Reason,
		}
		if esc.OccasionID != "" {
			entry["occasionId"] = esc.OccasionID
		}
		payload = append(payload, entry)
	}
	return payload
}
