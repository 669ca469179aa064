package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// Escalation is one instance needing operator attention
type Escalation struct {
	Instance   model.WorkInstance
	Reason     string
	OccasionID string // set when raised by an expired selection occasion
}

// ListEscalationsResult contains everything currently needing operator attention
type ListEscalationsResult struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Escalations []Escalation
}

// ListEscalationsStore defines the database operations needed for listing escalations
type ListEscalationsStore interface {
	ListUnassignedBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	ListOccasions(ctx context.Context, groupID string) ([]model.SelectionOccasion, error)
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
}

// ListEscalations reports work that automation could not place: unassigned
// instances coming up inside the escalation window, and instances left
// unpicked by occasions that closed without emptying their pool.
func ListEscalations(
	ctx context.Context,
	database ListEscalationsStore,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
) (*ListEscalationsResult, error) {
	windowEnd := now.AddDate(0, 0, cfg.EscalationWindowDays)
	logger.Debug("Starting listEscalations",
		zap.String("group_id", cfg.GroupID),
		zap.Time("window_start", now),
		zap.Time("window_end", windowEnd))

	result := &ListEscalationsResult{
		WindowStart: now,
		WindowEnd:   windowEnd,
	}
	seen := make(map[string]bool)

	// Step 1: Unassigned instances coming up soon
	pending, err := database.ListUnassignedBetween(ctx, cfg.GroupID, now, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unassigned instances: %w", err)
	}
	for _, inst := range pending {
		seen[inst.ID] = true
		result.Escalations = append(result.Escalations, Escalation{
			Instance: inst,
			Reason:   "unassigned inside escalation window",
		})
	}

	// Step 2: Active occasions that closed with instances still in the pool
	occasions, err := database.ListOccasions(ctx, cfg.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occasions: %w", err)
	}
	for i := range occasions {
		occasion := &occasions[i]
		if occasion.State != model.OccasionActive || occasion.ClosesAt.After(now) {
			continue
		}
		remaining, err := resolveRemainingPool(ctx, database, logger, occasion)
		if err != nil {
			return nil, err
		}
		for _, inst := range remaining {
			if seen[inst.ID] {
				continue
			}
			seen[inst.ID] = true
			result.Escalations = append(result.Escalations, Escalation{
				Instance:   inst,
				Reason:     "occasion closed with instance unpicked",
				OccasionID: occasion.ID,
			})
		}
	}

	logger.Info("Escalations listed", zap.Int("count", len(result.Escalations)))
	return result, nil
}
