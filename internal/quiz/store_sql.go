package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore backs the engine with database/sql, over either the sqlite
// or the pgx stdlib driver. Both dialects accept $N placeholders and
// ORDER BY RANDOM(), so the queries are shared.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Repo) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&sqlRepo{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlRepo struct {
	tx *sql.Tx
}

func (r *sqlRepo) SubjectExists(ctx context.Context, subjectID string) (bool, error) {
	var one int
	err := r.tx.QueryRowContext(ctx, `SELECT 1 FROM subjects WHERE id=$1`, subjectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *sqlRepo) RandomTopicsBySubject(ctx context.Context, subjectID string, limit int) ([]Topic, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT id, subject_id, title, level FROM topics WHERE subject_id=$1 ORDER BY RANDOM() LIMIT $2`,
		subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Topic
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Title, &t.Level); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *sqlRepo) TopicByID(ctx context.Context, id string) (Topic, error) {
	var t Topic
	err := r.tx.QueryRowContext(ctx,
		`SELECT id, subject_id, title, level FROM topics WHERE id=$1`, id).
		Scan(&t.ID, &t.SubjectID, &t.Title, &t.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, ErrTopicNotFound
	}
	if err != nil {
		return Topic{}, err
	}
	return t, nil
}

func (r *sqlRepo) OptionByID(ctx context.Context, id string) (AnswerOption, error) {
	var o AnswerOption
	err := r.tx.QueryRowContext(ctx,
		`SELECT id, topic_id, statement, is_correct, justification FROM answer_options WHERE id=$1`, id).
		Scan(&o.ID, &o.TopicID, &o.Statement, &o.Correct, &o.Justification)
	if errors.Is(err, sql.ErrNoRows) {
		return AnswerOption{}, ErrOptionNotFound
	}
	if err != nil {
		return AnswerOption{}, err
	}
	return o, nil
}

func (r *sqlRepo) CorrectOption(ctx context.Context, topicID string) (AnswerOption, error) {
	var o AnswerOption
	err := r.tx.QueryRowContext(ctx,
		`SELECT id, topic_id, statement, is_correct, justification
		 FROM answer_options WHERE topic_id=$1 AND is_correct=$2`, topicID, true).
		Scan(&o.ID, &o.TopicID, &o.Statement, &o.Correct, &o.Justification)
	if errors.Is(err, sql.ErrNoRows) {
		return AnswerOption{}, ErrMissingCorrectOption
	}
	if err != nil {
		return AnswerOption{}, err
	}
	return o, nil
}

func (r *sqlRepo) RandomIncorrectOptions(ctx context.Context, topicID string, n int) ([]AnswerOption, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT id, topic_id, statement, is_correct, justification
		 FROM answer_options WHERE topic_id=$1 AND is_correct=$2
		 ORDER BY RANDOM() LIMIT $3`, topicID, false, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AnswerOption
	for rows.Next() {
		var o AnswerOption
		if err := rows.Scan(&o.ID, &o.TopicID, &o.Statement, &o.Correct, &o.Justification); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *sqlRepo) CreateAttempt(ctx context.Context, a Attempt) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO attempts (id, user_id, started_at, ended_at, final_score) VALUES ($1,$2,$3,NULL,0)`,
		a.ID, a.UserID, a.StartedAt.Unix())
	return err
}

func (r *sqlRepo) AttemptOwnedBy(ctx context.Context, id, userID string) (Attempt, error) {
	var a Attempt
	var started int64
	var ended sql.NullInt64
	err := r.tx.QueryRowContext(ctx,
		`SELECT id, user_id, started_at, ended_at, final_score FROM attempts WHERE id=$1 AND user_id=$2`,
		id, userID).
		Scan(&a.ID, &a.UserID, &started, &ended, &a.FinalScore)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	if err != nil {
		return Attempt{}, err
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	if ended.Valid {
		t := time.Unix(ended.Int64, 0).UTC()
		a.EndedAt = &t
	}
	return a, nil
}

func (r *sqlRepo) ListAttemptsByUser(ctx context.Context, userID string) ([]Attempt, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT id, user_id, started_at, ended_at, final_score
		 FROM attempts WHERE user_id=$1 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var started int64
		var ended sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &started, &ended, &a.FinalScore); err != nil {
			return nil, err
		}
		a.StartedAt = time.Unix(started, 0).UTC()
		if ended.Valid {
			t := time.Unix(ended.Int64, 0).UTC()
			a.EndedAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FinalizeAttempt is conditional on the attempt still being open.
// Under concurrent duplicate submissions exactly one UPDATE matches;
// the loser sees zero rows and gets ErrAttemptFinalized.
func (r *sqlRepo) FinalizeAttempt(ctx context.Context, id string, score float64, endedAt time.Time) error {
	res, err := r.tx.ExecContext(ctx,
		`UPDATE attempts SET ended_at=$1, final_score=$2 WHERE id=$3 AND ended_at IS NULL`,
		endedAt.Unix(), score, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAttemptFinalized
	}
	return nil
}

func (r *sqlRepo) SaveResponse(ctx context.Context, resp Response) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO responses (id, attempt_id, topic_id, chosen_option_id, is_correct) VALUES ($1,$2,$3,$4,$5)`,
		resp.ID, resp.AttemptID, resp.TopicID, resp.ChosenOptionID, resp.Correct)
	return err
}
