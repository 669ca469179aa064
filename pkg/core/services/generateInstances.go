package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/core/schedule"
)

// GenerateInstancesResult contains the instances created from the configured routines
type GenerateInstancesResult struct {
	From      time.Time
	To        time.Time
	Generated []model.WorkInstance
	Skipped   int // occurrences already present in the database
	DryRun    bool
}

// GenerateInstancesStore defines the database operations needed for generating instances
type GenerateInstancesStore interface {
	ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	InsertInstances(ctx context.Context, instances []model.WorkInstance) error
}

// GenerateInstances expands the configured routines over [from, to] and stores
// the occurrences that do not exist yet. Rerunning over the same range only
// adds what is missing, so the schedule can be topped up at any cadence.
func GenerateInstances(
	ctx context.Context,
	database GenerateInstancesStore,
	cfg *config.Config,
	logger *zap.Logger,
	from, to time.Time,
	dryRun bool,
) (*GenerateInstancesResult, error) {
	logger.Debug("Starting generateInstances",
		zap.String("group_id", cfg.GroupID),
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Bool("dry_run", dryRun))

	rules := cfg.ScheduleRules()
	if len(rules) == 0 {
		return nil, model.NewValidationError("routines", "no routines configured")
	}

	// Step 1: Expand every routine over the range
	expanded, err := schedule.ExpandRules(rules, cfg.GroupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to expand routines: %w", err)
	}
	logger.Debug("Expanded routines", zap.Int("occurrence_count", len(expanded)))

	// Step 2: DB query - Fetch what already exists in the range
	existing, err := database.ListInstancesBetween(ctx, cfg.GroupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing instances: %w", err)
	}

	present := make(map[string]bool, len(existing))
	for _, inst := range existing {
		present[occurrenceKey(inst.Title, inst.ScheduledAt)] = true
	}

	// Step 3: Keep only occurrences not stored yet
	fresh := make([]model.WorkInstance, 0, len(expanded))
	skipped := 0
	for _, inst := range expanded {
		if present[occurrenceKey(inst.Title, inst.ScheduledAt)] {
			skipped++
			continue
		}
		fresh = append(fresh, inst)
	}
	logger.Debug("Deduplicated occurrences",
		zap.Int("fresh", len(fresh)),
		zap.Int("skipped", skipped))

	result := &GenerateInstancesResult{
		From:      from,
		To:        to,
		Generated: fresh,
		Skipped:   skipped,
		DryRun:    dryRun,
	}

	if dryRun {
		logger.Info("Dry run mode - instances not saved", zap.Int("would_create", len(fresh)))
		return result, nil
	}

	if len(fresh) > 0 {
		if err := database.InsertInstances(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to insert instances: %w", err)
		}
	}

	logger.Info("Instances generated",
		zap.Int("created", len(fresh)),
		zap.Int("skipped", skipped))

	return result, nil
}

// occurrenceKey identifies a routine occurrence by title and start time
func occurrenceKey(title string, scheduledAt time.Time) string {
	return title + "|" + scheduledAt.UTC().Format(time.RFC3339)
}
