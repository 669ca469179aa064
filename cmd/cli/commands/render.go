package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// renderInstanceStatus colors an instance status for terminal output
func renderInstanceStatus(status model.InstanceStatus) string {
	switch status {
	case model.InstanceUnassigned:
		return color.New(color.FgYellow).Sprint("unassigned")
	case model.InstanceAssigned:
		return color.New(color.FgHiGreen).Sprint("assigned")
	case model.InstanceCompleted:
		return color.New(color.FgHiBlue).Sprint("completed")
	case model.InstanceMissed:
		return color.New(color.FgRed).Sprint("missed")
	}
	return string(status)
}

// renderOccasionState colors an occasion lifecycle state
func renderOccasionState(state model.OccasionState) string {
	switch state {
	case model.OccasionDraft:
		return color.New(color.FgHiBlack).Sprint("[draft]")
	case model.OccasionComputed:
		return color.New(color.FgHiCyan).Sprint("[computed]")
	case model.OccasionActive:
		return color.New(color.FgHiYellow).Sprint("[active]")
	case model.OccasionCompleted:
		return color.New(color.FgHiGreen).Sprint("[completed]")
	}
	return string(state)
}

// renderFairnessIndex colors the 0-100 fairness index by how healthy it is
func renderFairnessIndex(index float64) string {
	switch {
	case index >= 80:
		return color.New(color.FgHiGreen).Sprintf("%.1f", index)
	case index >= 50:
		return color.New(color.FgYellow).Sprintf("%.1f", index)
	default:
		return color.New(color.FgRed).Sprintf("%.1f", index)
	}
}

// instanceLine formats one instance for list output
func instanceLine(inst model.WorkInstance) string {
	line := fmt.Sprintf("%s  %-20s %4.1f pts  %s",
		inst.ScheduledAt.Format("2006-01-02 15:04 (Mon)"),
		inst.Title,
		inst.PointValue,
		renderInstanceStatus(inst.Status))
	if inst.AssignedMemberID != "" {
		line += fmt.Sprintf(" → %s", inst.AssignedMemberID)
	}
	return line
}

// printWarnings lists non-fatal warnings a service surfaced
func printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Println()
	for _, warning := range warnings {
		fmt.Printf("⚠️  %s\n", warning)
	}
}

// parseTimeFlag reads a date flag as RFC 3339 or a plain date
func parseTimeFlag(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q must be RFC 3339 or YYYY-MM-DD", value)
}
