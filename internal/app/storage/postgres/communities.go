package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// --- CommunityStore ----------------------------------------------------------

const communityColumns = `id, name, description, privacy, creator_id, member_count, created_at, updated_at`

func scanCommunity(row interface{ Scan(...any) error }) (community.Community, error) {
	var c community.Community
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Privacy, &c.CreatorID,
		&c.MemberCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCommunity(ctx context.Context, c community.Community, owner community.Member) (community.Community, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.MemberCount = 1
	owner.CommunityID = c.ID
	owner.Role = community.RoleOwner
	if owner.JoinedAt.IsZero() {
		owner.JoinedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return community.Community{}, translate("create community", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO communities (id, name, description, privacy, creator_id, member_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
	`, c.ID, c.Name, c.Description, c.Privacy, c.CreatorID, c.CreatedAt, c.UpdatedAt); err != nil {
		return community.Community{}, translate("create community", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, owner.CommunityID, owner.UserID, owner.Role, owner.JoinedAt); err != nil {
		return community.Community{}, translate("create community", err)
	}
	if err := tx.Commit(); err != nil {
		return community.Community{}, translate("create community", err)
	}
	return c, nil
}

func (s *Store) UpdateCommunity(ctx context.Context, c community.Community) (community.Community, error) {
	c.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE communities SET description = $2, privacy = $3, updated_at = $4 WHERE id = $1
	`, c.ID, c.Description, c.Privacy, c.UpdatedAt)
	if err != nil {
		return community.Community{}, translate("update community", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return community.Community{}, translate("update community", sql.ErrNoRows)
	}
	return s.GetCommunity(ctx, c.ID)
}

func (s *Store) GetCommunity(ctx context.Context, id string) (community.Community, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = $1`, id)
	c, err := scanCommunity(row)
	if err != nil {
		return community.Community{}, translate("get community", err)
	}
	return c, nil
}

func (s *Store) DeleteCommunity(ctx context.Context, id string) error {
	// Members and invitations cascade via FKs.
	result, err := s.db.ExecContext(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return translate("delete community", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete community", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) ListCommunities(ctx context.Context, userID string, p storage.Page) ([]community.Community, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixed("c", communityColumns)+`
		FROM communities c
		WHERE c.privacy = 'public'
		   OR EXISTS (
			SELECT 1 FROM community_members m
			WHERE m.community_id = c.id AND m.user_id = $1
		   )
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, translate("list communities", err)
	}
	defer rows.Close()

	var out []community.Community
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, translate("list communities", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddMember(ctx context.Context, m community.Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("add member", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, m.CommunityID, m.UserID, m.Role, m.JoinedAt); err != nil {
		return translate("add member", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE communities SET member_count = member_count + 1 WHERE id = $1
	`, m.CommunityID); err != nil {
		return translate("add member", err)
	}
	return translate("add member", tx.Commit())
}

func (s *Store) RemoveMember(ctx context.Context, communityID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("remove member", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM community_members WHERE community_id = $1 AND user_id = $2
	`, communityID, userID)
	if err != nil {
		return translate("remove member", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("remove member", sql.ErrNoRows)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE communities SET member_count = member_count - 1 WHERE id = $1
	`, communityID); err != nil {
		return translate("remove member", err)
	}
	return translate("remove member", tx.Commit())
}

func (s *Store) GetMember(ctx context.Context, communityID, userID string) (community.Member, error) {
	var m community.Member
	err := s.db.QueryRowContext(ctx, `
		SELECT community_id, user_id, role, joined_at
		FROM community_members
		WHERE community_id = $1 AND user_id = $2
	`, communityID, userID).Scan(&m.CommunityID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return community.Member{}, translate("get member", err)
	}
	return m, nil
}

func (s *Store) UpdateMemberRole(ctx context.Context, communityID, userID string, role community.Role) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE community_members SET role = $3 WHERE community_id = $1 AND user_id = $2
	`, communityID, userID, role)
	if err != nil {
		return translate("update member role", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("update member role", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) TransferOwnership(ctx context.Context, communityID, fromUserID, toUserID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("transfer ownership", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE community_members SET role = 'moderator'
		WHERE community_id = $1 AND user_id = $2 AND role = 'owner'
	`, communityID, fromUserID)
	if err != nil {
		return translate("transfer ownership", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("transfer ownership", domain.ErrNotFound)
	}
	result, err = tx.ExecContext(ctx, `
		UPDATE community_members SET role = 'owner'
		WHERE community_id = $1 AND user_id = $2
	`, communityID, toUserID)
	if err != nil {
		return translate("transfer ownership", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("transfer ownership", domain.ErrNotFound)
	}
	return translate("transfer ownership", tx.Commit())
}

func (s *Store) ListMembers(ctx context.Context, communityID string, p storage.Page) ([]community.Member, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT community_id, user_id, role, joined_at
		FROM community_members
		WHERE community_id = $1
		ORDER BY joined_at
		LIMIT $2 OFFSET $3
	`, communityID, limit, offset)
	if err != nil {
		return nil, translate("list members", err)
	}
	defer rows.Close()

	var out []community.Member
	for rows.Next() {
		var m community.Member
		if err := rows.Scan(&m.CommunityID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, translate("list members", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const invitationColumns = `id, community_id, inviter_id, invitee_id, status, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (community.Invitation, error) {
	var inv community.Invitation
	err := row.Scan(&inv.ID, &inv.CommunityID, &inv.InviterID, &inv.InviteeID,
		&inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (s *Store) CreateInvitation(ctx context.Context, inv community.Invitation) (community.Invitation, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inv.Status = community.InvitationPending
	inv.CreatedAt = now
	inv.UpdatedAt = now

	// Partial unique index on (community_id, invitee_id) WHERE status = 'pending'
	// turns duplicate pending invitations into a conflict.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO community_invitations (id, community_id, inviter_id, invitee_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, inv.ID, inv.CommunityID, inv.InviterID, inv.InviteeID, inv.Status, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return community.Invitation{}, translate("create invitation", err)
	}
	return inv, nil
}

func (s *Store) GetInvitation(ctx context.Context, id string) (community.Invitation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM community_invitations WHERE id = $1
	`, id)
	inv, err := scanInvitation(row)
	if err != nil {
		return community.Invitation{}, translate("get invitation", err)
	}
	return inv, nil
}

func (s *Store) UpdateInvitation(ctx context.Context, inv community.Invitation) (community.Invitation, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE community_invitations SET status = $2, updated_at = $3 WHERE id = $1
	`, inv.ID, inv.Status, time.Now().UTC())
	if err != nil {
		return community.Invitation{}, translate("update invitation", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return community.Invitation{}, translate("update invitation", sql.ErrNoRows)
	}
	return s.GetInvitation(ctx, inv.ID)
}

func (s *Store) ListInvitations(ctx context.Context, inviteeID string) ([]community.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM community_invitations
		WHERE invitee_id = $1
		ORDER BY created_at DESC
	`, inviteeID)
	if err != nil {
		return nil, translate("list invitations", err)
	}
	defer rows.Close()

	var out []community.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, translate("list invitations", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
