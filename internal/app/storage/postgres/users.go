package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// --- UserStore ---------------------------------------------------------------

const userColumns = `id, username, email, password_hash, display_name, bio, avatar_url, private, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.Bio, &u.AvatarURL, &u.Private, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, display_name, bio, avatar_url, private, created_at, updated_at)
		VALUES ($1, lower($2), lower($3), $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.DisplayName, u.Bio, u.AvatarURL, u.Private, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, translate("create user", err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	u.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = $2, bio = $3, avatar_url = $4, private = $5, password_hash = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.DisplayName, u.Bio, u.AvatarURL, u.Private, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return user.User{}, translate("update user", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, translate("update user", sql.ErrNoRows)
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, translate("get user", err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = lower($1)`, username)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, translate("get user by username", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, translate("get user by email", err)
	}
	return u, nil
}

func (s *Store) CreateFollow(ctx context.Context, f user.Follow) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
	`, f.FollowerID, f.FolloweeID, f.CreatedAt)
	return translate("create follow", err)
}

func (s *Store) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2
	`, followerID, followeeID)
	if err != nil {
		return translate("delete follow", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete follow", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) FollowExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)
	`, followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, translate("follow exists", err)
	}
	return exists, nil
}

func (s *Store) ListFollowers(ctx context.Context, userID string, p storage.Page) ([]user.User, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixed("u", userColumns)+`
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, translate("list followers", err)
	}
	return collectUsers(rows)
}

func (s *Store) ListFollowing(ctx context.Context, userID string, p storage.Page) ([]user.User, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixed("u", userColumns)+`
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, translate("list following", err)
	}
	return collectUsers(rows)
}

func (s *Store) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT followee_id FROM follows WHERE follower_id = $1
	`, userID)
	if err != nil {
		return nil, translate("list following ids", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translate("list following ids", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) CreateBlock(ctx context.Context, b user.Block) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("create block", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
	`, b.BlockerID, b.BlockedID, b.CreatedAt); err != nil {
		return translate("create block", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM follows
		WHERE (follower_id = $1 AND followee_id = $2)
		   OR (follower_id = $2 AND followee_id = $1)
	`, b.BlockerID, b.BlockedID); err != nil {
		return translate("create block", err)
	}
	return translate("create block", tx.Commit())
}

func (s *Store) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM user_blocks WHERE blocker_id = $1 AND blocked_id = $2
	`, blockerID, blockedID)
	if err != nil {
		return translate("delete block", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete block", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) BlockExists(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`, userA, userB).Scan(&exists)
	if err != nil {
		return false, translate("block exists", err)
	}
	return exists, nil
}

func collectUsers(rows *sql.Rows) ([]user.User, error) {
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate("scan user", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
