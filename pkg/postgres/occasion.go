package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

const occasionColumns = `id, group_id, algorithm, member_ids, instance_pool, state,
	pick_order, quotas, current_turn, picks, closes_at, created_at, completed_at`

// InsertOccasion stores a new selection occasion
func (d *DB) InsertOccasion(ctx context.Context, occasion *model.SelectionOccasion) error {
	params, err := occasionParams(occasion)
	if err != nil {
		return err
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO selection_occasion (`+occasionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, params...)
	if err != nil {
		return fmt.Errorf("failed to insert occasion: %w", err)
	}

	return nil
}

// GetOccasion retrieves one selection occasion
func (d *DB) GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+occasionColumns+`
		FROM selection_occasion
		WHERE id = $1
	`, occasionID)

	occasion, err := scanOccasion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrOccasionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &occasion, nil
}

// UpdateOccasion replaces a stored occasion
func (d *DB) UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error {
	params, err := occasionParams(occasion)
	if err != nil {
		return err
	}

	tag, err := d.pool.Exec(ctx, `
		UPDATE selection_occasion SET
			group_id = $2,
			algorithm = $3,
			member_ids = $4,
			instance_pool = $5,
			state = $6,
			pick_order = $7,
			quotas = $8,
			current_turn = $9,
			picks = $10,
			closes_at = $11,
			created_at = $12,
			completed_at = $13
		WHERE id = $1
	`, params...)
	if err != nil {
		return fmt.Errorf("failed to update occasion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrOccasionNotFound
	}

	return nil
}

// DeleteOccasion removes a stored occasion
func (d *DB) DeleteOccasion(ctx context.Context, occasionID string) error {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM selection_occasion WHERE id = $1
	`, occasionID)
	if err != nil {
		return fmt.Errorf("failed to delete occasion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrOccasionNotFound
	}

	return nil
}

// ListOccasions retrieves the group's occasions sorted by creation time
func (d *DB) ListOccasions(ctx context.Context, groupID string) ([]model.SelectionOccasion, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+occasionColumns+`
		FROM selection_occasion
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query occasions: %w", err)
	}
	defer rows.Close()

	occasions := make([]model.SelectionOccasion, 0)
	for rows.Next() {
		occasion, err := scanOccasion(rows)
		if err != nil {
			return nil, err
		}
		occasions = append(occasions, occasion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occasions: %w", err)
	}

	return occasions, nil
}

// occasionParams builds the positional parameters shared by insert and update,
// serializing the document-shaped fields
func occasionParams(occasion *model.SelectionOccasion) ([]any, error) {
	memberIDs, err := marshalDoc(occasion.MemberIDs)
	if err != nil {
		return nil, err
	}
	instancePool, err := marshalDoc(occasion.InstancePool)
	if err != nil {
		return nil, err
	}
	pickOrder, err := marshalDoc(occasion.Order)
	if err != nil {
		return nil, err
	}
	quotas, err := marshalDoc(occasion.Quotas)
	if err != nil {
		return nil, err
	}
	picks, err := marshalDoc(occasion.Picks)
	if err != nil {
		return nil, err
	}

	return []any{
		occasion.ID, occasion.GroupID, string(occasion.Algorithm), memberIDs, instancePool,
		string(occasion.State), pickOrder, quotas, occasion.CurrentTurn, picks,
		occasion.ClosesAt, occasion.CreatedAt, occasion.CompletedAt,
	}, nil
}

func scanOccasion(row pgx.Row) (model.SelectionOccasion, error) {
	var occasion model.SelectionOccasion
	var algorithm, state string
	var memberIDs, instancePool, pickOrder, quotas, picks []byte
	if err := row.Scan(&occasion.ID, &occasion.GroupID, &algorithm, &memberIDs, &instancePool,
		&state, &pickOrder, &quotas, &occasion.CurrentTurn, &picks,
		&occasion.ClosesAt, &occasion.CreatedAt, &occasion.CompletedAt); err != nil {
		return model.SelectionOccasion{}, fmt.Errorf("failed to scan occasion: %w", err)
	}
	occasion.Algorithm = model.Algorithm(algorithm)
	occasion.State = model.OccasionState(state)
	if err := unmarshalDoc(memberIDs, &occasion.MemberIDs); err != nil {
		return model.SelectionOccasion{}, err
	}
	if err := unmarshalDoc(instancePool, &occasion.InstancePool); err != nil {
		return model.SelectionOccasion{}, err
	}
	if err := unmarshalDoc(pickOrder, &occasion.Order); err != nil {
		return model.SelectionOccasion{}, err
	}
	if err := unmarshalDoc(quotas, &occasion.Quotas); err != nil {
		return model.SelectionOccasion{}, err
	}
	if err := unmarshalDoc(picks, &occasion.Picks); err != nil {
		return model.SelectionOccasion{}, err
	}
	return occasion, nil
}
