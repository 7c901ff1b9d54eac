package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

// GroupRepository implements group.Repository for PostgreSQL. Members live
// in group_members; their position column keeps join order.
type GroupRepository struct {
	q         Querier
	forUpdate bool
}

const groupSelect = `
	SELECT g.id, g.name, g.invite_code, g.owner_id,
	       g.current_streak, g.longest_streak, g.last_played_date, g.created_at,
	       ARRAY(
	           SELECT m.user_id::text FROM group_members m
	           WHERE m.group_id = g.id
	           ORDER BY m.position
	       ) AS member_ids
	FROM friend_groups g`

func (r *GroupRepository) lock() string {
	if r.forUpdate {
		return " FOR UPDATE OF g"
	}
	return ""
}

// Get returns a group by ID.
func (r *GroupRepository) Get(ctx context.Context, id shared.GroupID) (*group.FriendGroup, error) {
	g, err := scanGroup(r.q.QueryRow(ctx, groupSelect+` WHERE g.id = $1`+r.lock(), id.String()))
	if IsNoRows(err) {
		return nil, shared.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// GetByInviteCode returns the group an invite code belongs to.
func (r *GroupRepository) GetByInviteCode(ctx context.Context, code string) (*group.FriendGroup, error) {
	g, err := scanGroup(r.q.QueryRow(ctx, groupSelect+` WHERE g.invite_code = $1`+r.lock(), code))
	if IsNoRows(err) {
		return nil, shared.ErrInvalidInviteCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by invite code: %w", err)
	}
	return g, nil
}

// FindByMember returns the groups of a user ordered by ID, which is also the
// order their rows are locked in.
func (r *GroupRepository) FindByMember(ctx context.Context, userID shared.UserID) ([]*group.FriendGroup, error) {
	query := groupSelect + `
		WHERE EXISTS (
			SELECT 1 FROM group_members gm WHERE gm.group_id = g.id AND gm.user_id = $1
		)
		ORDER BY g.id` + r.lock()

	rows, err := r.q.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}
	defer rows.Close()

	var out []*group.FriendGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Save upserts the group row and brings group_members in line with
// g.MemberIDs. Callers run it inside a transaction.
func (r *GroupRepository) Save(ctx context.Context, g *group.FriendGroup) error {
	upsert := `
		INSERT INTO friend_groups (
			id, name, invite_code, owner_id,
			current_streak, longest_streak, last_played_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_played_date = EXCLUDED.last_played_date
	`
	_, err := r.q.Exec(ctx, upsert,
		g.ID.String(),
		g.Name,
		g.InviteCode,
		g.OwnerID.String(),
		g.Streak.Current,
		g.Streak.Longest,
		nullableDate(g.Streak.LastDate),
		g.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("group", "Save", shared.ErrAlreadyExists, "invite code already in use", err)
		}
		return fmt.Errorf("failed to save group: %w", err)
	}

	members := shared.UserIDs(g.MemberIDs)

	removeGone := `DELETE FROM group_members WHERE group_id = $1 AND NOT (user_id = ANY($2::uuid[]))`
	if _, err := r.q.Exec(ctx, removeGone, g.ID.String(), members); err != nil {
		return fmt.Errorf("failed to remove group members: %w", err)
	}

	addNew := `
		INSERT INTO group_members (group_id, user_id)
		SELECT $1, m.id
		FROM unnest($2::uuid[]) WITH ORDINALITY AS m(id, ord)
		ORDER BY m.ord
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, addNew, g.ID.String(), members); err != nil {
		return fmt.Errorf("failed to add group members: %w", err)
	}
	return nil
}

// Delete removes a group; members go with it.
func (r *GroupRepository) Delete(ctx context.Context, id shared.GroupID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM friend_groups WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrGroupNotFound
	}
	return nil
}

func scanGroup(row pgx.Row) (*group.FriendGroup, error) {
	var (
		g           group.FriendGroup
		id, ownerID string
		lastDate    *time.Time
		memberIDs   []string
	)
	err := row.Scan(
		&id,
		&g.Name,
		&g.InviteCode,
		&ownerID,
		&g.Streak.Current,
		&g.Streak.Longest,
		&lastDate,
		&g.CreatedAt,
		&memberIDs,
	)
	if err != nil {
		return nil, err
	}
	g.ID = shared.GroupID(id)
	g.OwnerID = shared.UserID(ownerID)
	g.Streak.LastDate = utcDate(lastDate)
	g.MemberIDs = make([]shared.UserID, len(memberIDs))
	for i, m := range memberIDs {
		g.MemberIDs[i] = shared.UserID(m)
	}
	return &g, nil
}
