package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// GetInstance retrieves one work instance
func (d *DB) GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, group_id, kind, title, scheduled_at, duration_minutes,
		       point_value, assigned_member_id, status, completed_at
		FROM work_instance
		WHERE id = $1
	`, instanceID)

	inst, err := scanInstance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}

	return &inst, nil
}

// InsertInstances inserts work instance records in a batch
func (d *DB) InsertInstances(ctx context.Context, instances []model.WorkInstance) error {
	if len(instances) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range instances {
		inst := instances[i]
		var assignedMemberID *string
		if inst.AssignedMemberID != "" {
			assignedMemberID = &inst.AssignedMemberID
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO work_instance (id, group_id, kind, title, scheduled_at, duration_minutes,
				point_value, assigned_member_id, status, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, inst.ID, inst.GroupID, string(inst.Kind), inst.Title, inst.ScheduledAt, inst.DurationMinutes,
			inst.PointValue, assignedMemberID, string(inst.Status), inst.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to insert work instance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListInstancesBetween retrieves the group's instances scheduled inside
// [from, to], sorted chronologically
func (d *DB) ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, group_id, kind, title, scheduled_at, duration_minutes,
		       point_value, assigned_member_id, status, completed_at
		FROM work_instance
		WHERE group_id = $1 AND scheduled_at >= $2 AND scheduled_at <= $3
		ORDER BY scheduled_at, id
	`, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query work instances: %w", err)
	}
	defer rows.Close()

	return collectInstances(rows)
}

// ListUnassignedBetween retrieves the group's unassigned instances scheduled
// inside [from, to], sorted chronologically
func (d *DB) ListUnassignedBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, group_id, kind, title, scheduled_at, duration_minutes,
		       point_value, assigned_member_id, status, completed_at
		FROM work_instance
		WHERE group_id = $1 AND scheduled_at >= $2 AND scheduled_at <= $3
		  AND assigned_member_id IS NULL AND status = 'unassigned'
		ORDER BY scheduled_at, id
	`, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned instances: %w", err)
	}
	defer rows.Close()

	return collectInstances(rows)
}

// ListCompletedPoints retrieves one points entry per completed instance in the
// group, skipping completions before since (zero since means no cutoff)
func (d *DB) ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error) {
	var cutoff *time.Time
	if !since.IsZero() {
		cutoff = &since
	}

	rows, err := d.pool.Query(ctx, `
		SELECT assigned_member_id, point_value, completed_at
		FROM work_instance
		WHERE group_id = $1 AND status = 'completed'
		  AND assigned_member_id IS NOT NULL AND completed_at IS NOT NULL
		  AND ($2::timestamptz IS NULL OR completed_at >= $2)
		ORDER BY completed_at, assigned_member_id
	`, groupID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed points: %w", err)
	}
	defer rows.Close()

	entries := make([]model.PointsEntry, 0)
	for rows.Next() {
		var entry model.PointsEntry
		if err := rows.Scan(&entry.MemberID, &entry.Points, &entry.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan points entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed points: %w", err)
	}

	return entries, nil
}

// ClaimInstance assigns the instance to the member if and only if it is still
// unassigned. The conditional UPDATE is the compare-and-swap: of two
// concurrent claimants exactly one matches the unassigned row.
func (d *DB) ClaimInstance(ctx context.Context, instanceID, memberID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE work_instance
		SET assigned_member_id = $2, status = 'assigned'
		WHERE id = $1 AND assigned_member_id IS NULL
	`, instanceID, memberID)
	if err != nil {
		return fmt.Errorf("failed to claim work instance: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row matched: either the instance does not exist or someone else
	// holds it.
	var exists bool
	err = d.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM work_instance WHERE id = $1)
	`, instanceID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check work instance: %w", err)
	}
	if !exists {
		return db.ErrInstanceNotFound
	}
	return db.ErrInstanceUnavailable
}

// ReleaseInstance returns the instance to the unassigned pool
func (d *DB) ReleaseInstance(ctx context.Context, instanceID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE work_instance
		SET assigned_member_id = NULL, status = 'unassigned'
		WHERE id = $1
	`, instanceID)
	if err != nil {
		return fmt.Errorf("failed to release work instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrInstanceNotFound
	}
	return nil
}

func scanInstance(row pgx.Row) (model.WorkInstance, error) {
	var inst model.WorkInstance
	var kind, status string
	var assignedMemberID *string
	if err := row.Scan(&inst.ID, &inst.GroupID, &kind, &inst.Title, &inst.ScheduledAt, &inst.DurationMinutes,
		&inst.PointValue, &assignedMemberID, &status, &inst.CompletedAt); err != nil {
		return model.WorkInstance{}, fmt.Errorf("failed to scan work instance: %w", err)
	}
	inst.Kind = model.InstanceKind(kind)
	inst.Status = model.InstanceStatus(status)
	if assignedMemberID != nil {
		inst.AssignedMemberID = *assignedMemberID
	}
	return inst, nil
}

func collectInstances(rows pgx.Rows) ([]model.WorkInstance, error) {
	instances := make([]model.WorkInstance, 0)
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work instances: %w", err)
	}

	return instances, nil
}
