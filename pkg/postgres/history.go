package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// LatestHistory retrieves the group's most recently completed history record
func (d *DB) LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, group_id, occasion_id, algorithm, final_order,
		       selections_per_member, points_picked_per_member, completed_at
		FROM turn_order_history
		WHERE group_id = $1
		ORDER BY completed_at DESC
		LIMIT 1
	`, groupID)

	return scanHistory(row)
}

// HistoryForOccasion retrieves the record written for one occasion
func (d *DB) HistoryForOccasion(ctx context.Context, occasionID string) (*model.TurnOrderHistory, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, group_id, occasion_id, algorithm, final_order,
		       selections_per_member, points_picked_per_member, completed_at
		FROM turn_order_history
		WHERE occasion_id = $1
	`, occasionID)

	return scanHistory(row)
}

// InsertHistory stores a history record unless the occasion already has one.
// ON CONFLICT DO NOTHING makes the write idempotent per occasion.
func (d *DB) InsertHistory(ctx context.Context, record *model.TurnOrderHistory) error {
	finalOrder, err := marshalDoc(record.FinalOrder)
	if err != nil {
		return err
	}
	selections, err := marshalDoc(record.SelectionsPerMember)
	if err != nil {
		return err
	}
	points, err := marshalDoc(record.PointsPickedPerMember)
	if err != nil {
		return err
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO turn_order_history (id, group_id, occasion_id, algorithm, final_order,
			selections_per_member, points_picked_per_member, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (occasion_id) DO NOTHING
	`, record.ID, record.GroupID, record.OccasionID, string(record.Algorithm), finalOrder,
		selections, points, record.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert turn order history: %w", err)
	}

	return nil
}

func scanHistory(row pgx.Row) (*model.TurnOrderHistory, error) {
	var record model.TurnOrderHistory
	var algorithm string
	var finalOrder, selections, points []byte
	err := row.Scan(&record.ID, &record.GroupID, &record.OccasionID, &algorithm, &finalOrder,
		&selections, &points, &record.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan turn order history: %w", err)
	}

	record.Algorithm = model.Algorithm(algorithm)
	if err := unmarshalDoc(finalOrder, &record.FinalOrder); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(selections, &record.SelectionsPerMember); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(points, &record.PointsPickedPerMember); err != nil {
		return nil, err
	}

	return &record, nil
}
