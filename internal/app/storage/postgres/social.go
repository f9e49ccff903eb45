package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// --- SocialStore -------------------------------------------------------------

const connectionColumns = `id, user_id, provider, provider_account, access_token, refresh_token, expires_at, created_at`

func scanConnection(row interface{ Scan(...any) error }) (social.Connection, error) {
	var (
		c       social.Connection
		expires sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Provider, &c.ProviderAccount,
		&c.AccessToken, &c.RefreshToken, &expires, &c.CreatedAt); err != nil {
		return social.Connection{}, err
	}
	if expires.Valid {
		c.ExpiresAt = expires.Time
	}
	return c, nil
}

func (s *Store) UpsertConnection(ctx context.Context, c social.Connection) (social.Connection, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var expires sql.NullTime
	if !c.ExpiresAt.IsZero() {
		expires = sql.NullTime{Time: c.ExpiresAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO social_connections (id, user_id, provider, provider_account, access_token, refresh_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET provider_account = EXCLUDED.provider_account,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at
	`, c.ID, c.UserID, c.Provider, c.ProviderAccount, c.AccessToken, c.RefreshToken, expires, c.CreatedAt)
	if err != nil {
		return social.Connection{}, translate("upsert connection", err)
	}
	return s.GetConnection(ctx, c.UserID, c.Provider)
}

func (s *Store) GetConnection(ctx context.Context, userID string, provider social.Provider) (social.Connection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+connectionColumns+` FROM social_connections WHERE user_id = $1 AND provider = $2
	`, userID, provider)
	c, err := scanConnection(row)
	if err != nil {
		return social.Connection{}, translate("get connection", err)
	}
	return c, nil
}

func (s *Store) DeleteConnection(ctx context.Context, userID string, provider social.Provider) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM social_connections WHERE user_id = $1 AND provider = $2
	`, userID, provider)
	if err != nil {
		return translate("delete connection", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete connection", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) ListConnections(ctx context.Context, userID string) ([]social.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+connectionColumns+` FROM social_connections WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, translate("list connections", err)
	}
	defer rows.Close()

	var out []social.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, translate("list connections", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const postColumns = `id, user_id, quiz_id, provider, status, provider_post_id, error, scheduled_for, published_at, created_at`

func scanPost(row interface{ Scan(...any) error }) (social.Post, error) {
	var (
		p         social.Post
		scheduled sql.NullTime
		published sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.QuizID, &p.Provider, &p.Status,
		&p.ProviderPostID, &p.Error, &scheduled, &published, &p.CreatedAt); err != nil {
		return social.Post{}, err
	}
	if scheduled.Valid {
		p.ScheduledFor = scheduled.Time
	}
	if published.Valid {
		p.PublishedAt = published.Time
	}
	return p, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func (s *Store) CreateSocialPost(ctx context.Context, p social.Post) (social.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO social_posts (id, user_id, quiz_id, provider, status, provider_post_id, error, scheduled_for, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.UserID, p.QuizID, p.Provider, p.Status, p.ProviderPostID, p.Error,
		nullTime(p.ScheduledFor), nullTime(p.PublishedAt), p.CreatedAt)
	if err != nil {
		return social.Post{}, translate("create social post", err)
	}
	return p, nil
}

func (s *Store) UpdateSocialPost(ctx context.Context, p social.Post) (social.Post, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE social_posts
		SET status = $2, provider_post_id = $3, error = $4, scheduled_for = $5, published_at = $6
		WHERE id = $1
	`, p.ID, p.Status, p.ProviderPostID, p.Error, nullTime(p.ScheduledFor), nullTime(p.PublishedAt))
	if err != nil {
		return social.Post{}, translate("update social post", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return social.Post{}, translate("update social post", sql.ErrNoRows)
	}
	return s.GetSocialPost(ctx, p.ID)
}

func (s *Store) GetSocialPost(ctx context.Context, id string) (social.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM social_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		return social.Post{}, translate("get social post", err)
	}
	return p, nil
}

func (s *Store) ListSocialPosts(ctx context.Context, userID string, p storage.Page) ([]social.Post, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM social_posts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, translate("list social posts", err)
	}
	return collectPosts(rows)
}

func (s *Store) ListDuePosts(ctx context.Context, now time.Time) ([]social.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM social_posts
		WHERE status = 'pending' AND scheduled_for IS NOT NULL AND scheduled_for <= $1
		ORDER BY scheduled_for
	`, now)
	if err != nil {
		return nil, translate("list due posts", err)
	}
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]social.Post, error) {
	defer rows.Close()

	var out []social.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, translate("scan social post", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
