package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// ListMembers returns the group roster
func (h *Handler) ListMembers() gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := h.database.ListMembers(c.Request.Context(), h.cfg.GroupID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, members)
	}
}

// GetMember returns one member
func (h *Handler) GetMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, err := h.database.GetMember(c.Request.Context(), h.cfg.GroupID, c.Param("id"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, member)
	}
}

// UpsertMember creates or replaces a member record
func (h *Handler) UpsertMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			DisplayName  string               `json:"displayName"`
			Status       string               `json:"status"`
			Availability []model.BlackoutRule `json:"availability"`
			Limits       *model.Limits        `json:"limits"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member payload"})
			return
		}

		if body.DisplayName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "displayName is required"})
			return
		}
		status := model.MemberStatus(body.Status)
		if body.Status == "" {
			status = model.MemberActive
		} else if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
			return
		}
		for _, rule := range body.Availability {
			if rule.Weekday < time.Sunday || rule.Weekday > time.Saturday {
				c.JSON(http.StatusBadRequest, gin.H{"error": "availability weekday must be 0-6"})
				return
			}
			if _, err := time.Parse("15:04", rule.Start); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "availability start must be HH:MM"})
				return
			}
			if _, err := time.Parse("15:04", rule.End); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "availability end must be HH:MM"})
				return
			}
		}

		member := &model.Member{
			ID:           c.Param("id"),
			GroupID:      h.cfg.GroupID,
			DisplayName:  body.DisplayName,
			Status:       status,
			Availability: body.Availability,
			Limits:       body.Limits,
		}
		if err := h.database.UpsertMember(c.Request.Context(), member); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, member)
	}
}
