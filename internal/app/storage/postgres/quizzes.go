package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// --- QuizStore ---------------------------------------------------------------

const quizColumns = `id, author_id, title, description, category, tags, visibility, published, like_count, response_count, created_at, updated_at`

func scanQuiz(row interface{ Scan(...any) error }) (quiz.Quiz, error) {
	var q quiz.Quiz
	err := row.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Description, &q.Category,
		pq.Array(&q.Tags), &q.Visibility, &q.Published, &q.LikeCount, &q.ResponseCount,
		&q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (s *Store) CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return quiz.Quiz{}, translate("create quiz", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quizzes (id, author_id, title, description, category, tags, visibility, published, like_count, response_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10)
	`, q.ID, q.AuthorID, q.Title, q.Description, q.Category, pq.Array(q.Tags),
		q.Visibility, q.Published, q.CreatedAt, q.UpdatedAt); err != nil {
		return quiz.Quiz{}, translate("create quiz", err)
	}

	if err := insertQuestions(ctx, tx, &q); err != nil {
		return quiz.Quiz{}, translate("create quiz", err)
	}
	if err := tx.Commit(); err != nil {
		return quiz.Quiz{}, translate("create quiz", err)
	}
	return q, nil
}

func (s *Store) UpdateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	q.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return quiz.Quiz{}, translate("update quiz", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE quizzes
		SET title = $2, description = $3, category = $4, tags = $5, visibility = $6, updated_at = $7
		WHERE id = $1
	`, q.ID, q.Title, q.Description, q.Category, pq.Array(q.Tags), q.Visibility, q.UpdatedAt)
	if err != nil {
		return quiz.Quiz{}, translate("update quiz", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return quiz.Quiz{}, translate("update quiz", sql.ErrNoRows)
	}

	// Nested rows are replaced wholesale; options go with their questions.
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = $1`, q.ID); err != nil {
		return quiz.Quiz{}, translate("update quiz", err)
	}
	if err := insertQuestions(ctx, tx, &q); err != nil {
		return quiz.Quiz{}, translate("update quiz", err)
	}
	if err := tx.Commit(); err != nil {
		return quiz.Quiz{}, translate("update quiz", err)
	}
	return s.GetQuiz(ctx, q.ID)
}

func insertQuestions(ctx context.Context, tx *sql.Tx, q *quiz.Quiz) error {
	for i := range q.Questions {
		question := &q.Questions[i]
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		question.QuizID = q.ID
		question.Position = i
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, quiz_id, text, type, position)
			VALUES ($1, $2, $3, $4, $5)
		`, question.ID, q.ID, question.Text, question.Type, question.Position); err != nil {
			return err
		}
		for j := range question.Options {
			opt := &question.Options[j]
			if opt.ID == "" {
				opt.ID = uuid.NewString()
			}
			opt.QuestionID = question.ID
			opt.Position = j
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO question_options (id, question_id, text, correct, position)
				VALUES ($1, $2, $3, $4, $5)
			`, opt.ID, question.ID, opt.Text, opt.Correct, opt.Position); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id)
	q, err := scanQuiz(row)
	if err != nil {
		return quiz.Quiz{}, translate("get quiz", err)
	}
	if err := s.loadQuestions(ctx, &q); err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

func (s *Store) loadQuestions(ctx context.Context, q *quiz.Quiz) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, text, type, position
		FROM questions
		WHERE quiz_id = $1
		ORDER BY position
	`, q.ID)
	if err != nil {
		return translate("load questions", err)
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var question quiz.Question
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Text, &question.Type, &question.Position); err != nil {
			return translate("load questions", err)
		}
		index[question.ID] = len(q.Questions)
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return translate("load questions", err)
	}

	optRows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.text, o.correct, o.position
		FROM question_options o
		JOIN questions qu ON qu.id = o.question_id
		WHERE qu.quiz_id = $1
		ORDER BY o.position
	`, q.ID)
	if err != nil {
		return translate("load options", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt quiz.Option
		if err := optRows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.Correct, &opt.Position); err != nil {
			return translate("load options", err)
		}
		if i, ok := index[opt.QuestionID]; ok {
			q.Questions[i].Options = append(q.Questions[i].Options, opt)
		}
	}
	return optRows.Err()
}

func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	// Questions, options, responses, comments and likes cascade via FKs.
	result, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return translate("delete quiz", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete quiz", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) SetQuizPublished(ctx context.Context, id string, published bool) (quiz.Quiz, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE quizzes SET published = $2, updated_at = $3 WHERE id = $1
	`, id, published, time.Now().UTC())
	if err != nil {
		return quiz.Quiz{}, translate("publish quiz", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return quiz.Quiz{}, translate("publish quiz", sql.ErrNoRows)
	}
	return s.GetQuiz(ctx, id)
}

func (s *Store) ListQuizzes(ctx context.Context, filter storage.QuizFilter) ([]quiz.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.PublishedOnly {
		query += ` AND published`
	}
	if filter.AuthorID != "" {
		query += ` AND author_id = ` + arg(filter.AuthorID)
	}
	if len(filter.AuthorIDs) > 0 {
		query += ` AND author_id = ANY(` + arg(pq.Array(filter.AuthorIDs)) + `)`
	}
	if filter.Category != "" {
		query += ` AND category = ` + arg(filter.Category)
	}
	if filter.Tag != "" {
		query += ` AND ` + arg(filter.Tag) + ` = ANY(tags)`
	}

	limit, offset := page(filter.Page)
	query += ` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("list quizzes", err)
	}
	defer rows.Close()

	var out []quiz.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, translate("list quizzes", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) UpsertResponse(ctx context.Context, r quiz.Response) (quiz.Response, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = time.Now().UTC()
	}
	answersJSON, err := json.Marshal(r.Answers)
	if err != nil {
		return quiz.Response{}, translate("upsert response", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return quiz.Response{}, translate("upsert response", err)
	}
	defer tx.Rollback()

	var inserted bool
	err = tx.QueryRowContext(ctx, `
		INSERT INTO quiz_responses (id, quiz_id, user_id, answers, score, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (quiz_id, user_id)
		DO UPDATE SET answers = EXCLUDED.answers, score = EXCLUDED.score, completed_at = EXCLUDED.completed_at
		RETURNING (xmax = 0)
	`, r.ID, r.QuizID, r.UserID, answersJSON, r.Score, r.CompletedAt).Scan(&inserted)
	if err != nil {
		return quiz.Response{}, translate("upsert response", err)
	}
	if inserted {
		if _, err := tx.ExecContext(ctx, `
			UPDATE quizzes SET response_count = response_count + 1 WHERE id = $1
		`, r.QuizID); err != nil {
			return quiz.Response{}, translate("upsert response", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return quiz.Response{}, translate("upsert response", err)
	}
	return s.GetResponse(ctx, r.QuizID, r.UserID)
}

const responseColumns = `id, quiz_id, user_id, answers, score, completed_at`

func scanResponse(row interface{ Scan(...any) error }) (quiz.Response, error) {
	var (
		r          quiz.Response
		answersRaw []byte
	)
	if err := row.Scan(&r.ID, &r.QuizID, &r.UserID, &answersRaw, &r.Score, &r.CompletedAt); err != nil {
		return quiz.Response{}, err
	}
	if len(answersRaw) > 0 {
		_ = json.Unmarshal(answersRaw, &r.Answers)
	}
	return r, nil
}

func (s *Store) GetResponse(ctx context.Context, quizID, userID string) (quiz.Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+responseColumns+` FROM quiz_responses WHERE quiz_id = $1 AND user_id = $2
	`, quizID, userID)
	r, err := scanResponse(row)
	if err != nil {
		return quiz.Response{}, translate("get response", err)
	}
	return r, nil
}

func (s *Store) ListResponses(ctx context.Context, quizID string, p storage.Page) ([]quiz.Response, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+responseColumns+`
		FROM quiz_responses
		WHERE quiz_id = $1
		ORDER BY completed_at
		LIMIT $2 OFFSET $3
	`, quizID, limit, offset)
	if err != nil {
		return nil, translate("list responses", err)
	}
	defer rows.Close()

	var out []quiz.Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, translate("list responses", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateComment(ctx context.Context, c quiz.Comment) (quiz.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var parent sql.NullString
	if c.ParentID != "" {
		parent = sql.NullString{String: c.ParentID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, quiz_id, author_id, parent_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.QuizID, c.AuthorID, parent, c.Body, c.CreatedAt)
	if err != nil {
		return quiz.Comment{}, translate("create comment", err)
	}
	return c, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (quiz.Comment, error) {
	var (
		c      quiz.Comment
		parent sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, quiz_id, author_id, parent_id, body, created_at FROM comments WHERE id = $1
	`, id).Scan(&c.ID, &c.QuizID, &c.AuthorID, &parent, &c.Body, &c.CreatedAt)
	if err != nil {
		return quiz.Comment{}, translate("get comment", err)
	}
	c.ParentID = parent.String
	return c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate("delete comment", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete comment", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) ListComments(ctx context.Context, quizID string, p storage.Page) ([]quiz.Comment, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, author_id, parent_id, body, created_at
		FROM comments
		WHERE quiz_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, quizID, limit, offset)
	if err != nil {
		return nil, translate("list comments", err)
	}
	defer rows.Close()

	var out []quiz.Comment
	for rows.Next() {
		var (
			c      quiz.Comment
			parent sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.QuizID, &c.AuthorID, &parent, &c.Body, &c.CreatedAt); err != nil {
			return nil, translate("list comments", err)
		}
		c.ParentID = parent.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateLike(ctx context.Context, l quiz.Like) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("create like", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quiz_likes (quiz_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`, l.QuizID, l.UserID, l.CreatedAt); err != nil {
		return translate("create like", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE quizzes SET like_count = like_count + 1 WHERE id = $1
	`, l.QuizID); err != nil {
		return translate("create like", err)
	}
	return translate("create like", tx.Commit())
}

func (s *Store) DeleteLike(ctx context.Context, quizID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("delete like", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM quiz_likes WHERE quiz_id = $1 AND user_id = $2
	`, quizID, userID)
	if err != nil {
		return translate("delete like", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("delete like", sql.ErrNoRows)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE quizzes SET like_count = like_count - 1 WHERE id = $1
	`, quizID); err != nil {
		return translate("delete like", err)
	}
	return translate("delete like", tx.Commit())
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM quizzes WHERE published AND category <> '' ORDER BY category
	`)
	if err != nil {
		return nil, translate("list categories", err)
	}
	return collectStrings(rows)
}

func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT unnest(tags) AS tag FROM quizzes WHERE published ORDER BY tag
	`)
	if err != nil {
		return nil, translate("list tags", err)
	}
	return collectStrings(rows)
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, translate("scan string", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
