package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

/* ---------------- subjects ---------------- */

func (s *SQLStore) CreateSubject(ctx context.Context, name string) (Subject, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM subjects WHERE name=$1`, name).Scan(&one)
	if err == nil {
		return Subject{}, ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Subject{}, err
	}
	sub := Subject{ID: uuid.NewString(), Name: name}
	_, err = s.db.ExecContext(ctx, `INSERT INTO subjects (id, name) VALUES ($1,$2)`, sub.ID, sub.Name)
	if err != nil {
		return Subject{}, err
	}
	return sub, nil
}

func (s *SQLStore) SubjectByID(ctx context.Context, id string) (Subject, error) {
	var sub Subject
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM subjects WHERE id=$1`, id).
		Scan(&sub.ID, &sub.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, ErrNotFound
	}
	if err != nil {
		return Subject{}, err
	}
	return sub, nil
}

func (s *SQLStore) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subject{}
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Name); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateSubject(ctx context.Context, id, name string) (Subject, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE subjects SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		return Subject{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Subject{}, ErrNotFound
	}
	return Subject{ID: id, Name: name}, nil
}

func (s *SQLStore) DeleteSubject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------- lessons ---------------- */

func (s *SQLStore) CreateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM lessons WHERE title=$1`, l.Title).Scan(&one)
	if err == nil {
		return Lesson{}, ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, err
	}
	l.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, subject_id, title, description, duration_secs, link) VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, nullable(l.SubjectID), l.Title, l.Description, l.DurationSecs, l.Link)
	if err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *SQLStore) LessonByID(ctx context.Context, id string) (Lesson, error) {
	var l Lesson
	var subj sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject_id, title, description, duration_secs, link FROM lessons WHERE id=$1`, id).
		Scan(&l.ID, &subj, &l.Title, &l.Description, &l.DurationSecs, &l.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, ErrNotFound
	}
	if err != nil {
		return Lesson{}, err
	}
	l.SubjectID = subj.String
	return l, nil
}

func (s *SQLStore) ListLessons(ctx context.Context, f ListFilter) ([]Lesson, error) {
	f = f.withDefaults()
	q := `SELECT id, subject_id, title, description, duration_secs, link FROM lessons WHERE 1=1`
	args := []any{}
	n := 0
	if f.SubjectID != "" {
		n++
		q += fmt.Sprintf(" AND subject_id=$%d", n)
		args = append(args, f.SubjectID)
	}
	if f.Search != "" {
		n++
		q += fmt.Sprintf(" AND title LIKE $%d", n)
		args = append(args, "%"+f.Search+"%")
	}
	q += fmt.Sprintf(" ORDER BY title LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		var l Lesson
		var subj sql.NullString
		if err := rows.Scan(&l.ID, &subj, &l.Title, &l.Description, &l.DurationSecs, &l.Link); err != nil {
			return nil, err
		}
		l.SubjectID = subj.String
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET subject_id=$1, title=$2, description=$3, duration_secs=$4, link=$5 WHERE id=$6`,
		nullable(l.SubjectID), l.Title, l.Description, l.DurationSecs, l.Link, l.ID)
	if err != nil {
		return Lesson{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Lesson{}, ErrNotFound
	}
	return l, nil
}

func (s *SQLStore) DeleteLesson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------- summaries ---------------- */

func (s *SQLStore) CreateSummary(ctx context.Context, sm Summary) (Summary, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM summaries WHERE title=$1`, sm.Title).Scan(&one)
	if err == nil {
		return Summary{}, ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Summary{}, err
	}
	sm.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, subject_id, title, link) VALUES ($1,$2,$3,$4)`,
		sm.ID, nullable(sm.SubjectID), sm.Title, sm.Link)
	if err != nil {
		return Summary{}, err
	}
	return sm, nil
}

func (s *SQLStore) SummaryByID(ctx context.Context, id string) (Summary, error) {
	var sm Summary
	var subj sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject_id, title, link FROM summaries WHERE id=$1`, id).
		Scan(&sm.ID, &subj, &sm.Title, &sm.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrNotFound
	}
	if err != nil {
		return Summary{}, err
	}
	sm.SubjectID = subj.String
	return sm, nil
}

func (s *SQLStore) ListSummaries(ctx context.Context, f ListFilter) ([]Summary, error) {
	f = f.withDefaults()
	q := `SELECT id, subject_id, title, link FROM summaries WHERE 1=1`
	args := []any{}
	n := 0
	if f.SubjectID != "" {
		n++
		q += fmt.Sprintf(" AND subject_id=$%d", n)
		args = append(args, f.SubjectID)
	}
	if f.Search != "" {
		n++
		q += fmt.Sprintf(" AND title LIKE $%d", n)
		args = append(args, "%"+f.Search+"%")
	}
	q += fmt.Sprintf(" ORDER BY title LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var subj sql.NullString
		if err := rows.Scan(&sm.ID, &subj, &sm.Title, &sm.Link); err != nil {
			return nil, err
		}
		sm.SubjectID = subj.String
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateSummary(ctx context.Context, sm Summary) (Summary, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE summaries SET subject_id=$1, title=$2, link=$3 WHERE id=$4`,
		nullable(sm.SubjectID), sm.Title, sm.Link, sm.ID)
	if err != nil {
		return Summary{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Summary{}, ErrNotFound
	}
	return sm, nil
}

func (s *SQLStore) DeleteSummary(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------- question bank maintenance ---------------- */

func (s *SQLStore) CreateTopic(ctx context.Context, t Topic) (Topic, error) {
	if _, err := s.SubjectByID(ctx, t.SubjectID); err != nil {
		return Topic{}, err
	}
	t.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (id, subject_id, title, level) VALUES ($1,$2,$3,$4)`,
		t.ID, t.SubjectID, t.Title, t.Level)
	if err != nil {
		return Topic{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTopicsBySubject(ctx context.Context, subjectID string) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject_id, title, level FROM topics WHERE subject_id=$1 ORDER BY title`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Topic{}
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Title, &t.Level); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteTopic(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOption refuses to give a topic a second correct option. The
// quiz engine grades against the single-correct invariant, so it must
// hold at write time, not be patched up at read time.
func (s *SQLStore) CreateOption(ctx context.Context, o Option) (Option, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM topics WHERE id=$1`, o.TopicID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return Option{}, ErrNotFound
	}
	if err != nil {
		return Option{}, err
	}
	if o.Correct {
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM answer_options WHERE topic_id=$1 AND is_correct=$2`, o.TopicID, true).Scan(&one)
		if err == nil {
			return Option{}, ErrSecondCorrectOption
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Option{}, err
		}
	}
	o.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO answer_options (id, topic_id, statement, is_correct, justification) VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.TopicID, o.Statement, o.Correct, o.Justification)
	if err != nil {
		return Option{}, err
	}
	return o, nil
}

func (s *SQLStore) ListOptionsByTopic(ctx context.Context, topicID string) ([]Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic_id, statement, is_correct, justification FROM answer_options WHERE topic_id=$1`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Option{}
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.TopicID, &o.Statement, &o.Correct, &o.Justification); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteOption(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM answer_options WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
