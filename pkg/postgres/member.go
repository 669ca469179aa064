package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// ListMembers retrieves the group's members sorted by ID
func (d *DB) ListMembers(ctx context.Context, groupID string) ([]model.Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, group_id, display_name, status, availability, limits
		FROM member
		WHERE group_id = $1
		ORDER BY id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := make([]model.Member, 0)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// GetMember retrieves one member scoped to the group
func (d *DB) GetMember(ctx context.Context, groupID, memberID string) (*model.Member, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, group_id, display_name, status, availability, limits
		FROM member
		WHERE id = $1 AND group_id = $2
	`, memberID, groupID)

	member, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}

	return &member, nil
}

// UpsertMember inserts a member record or replaces the existing one
func (d *DB) UpsertMember(ctx context.Context, member *model.Member) error {
	availability, err := marshalDoc(member.Availability)
	if err != nil {
		return err
	}
	limits, err := marshalDoc(member.Limits)
	if err != nil {
		return err
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO member (id, group_id, display_name, status, availability, limits)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			display_name = EXCLUDED.display_name,
			status = EXCLUDED.status,
			availability = EXCLUDED.availability,
			limits = EXCLUDED.limits
	`, member.ID, member.GroupID, member.DisplayName, string(member.Status), availability, limits)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

func scanMember(row pgx.Row) (model.Member, error) {
	var member model.Member
	var status string
	var availability, limits []byte
	if err := row.Scan(&member.ID, &member.GroupID, &member.DisplayName, &status, &availability, &limits); err != nil {
		return model.Member{}, fmt.Errorf("failed to scan member: %w", err)
	}
	member.Status = model.MemberStatus(status)
	if err := unmarshalDoc(availability, &member.Availability); err != nil {
		return model.Member{}, err
	}
	if err := unmarshalDoc(limits, &member.Limits); err != nil {
		return model.Member{}, err
	}
	return member, nil
}
