package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Service tracks per-user lesson/summary progress and derives the
// dashboard aggregates. All identity arrives as an explicit userID
// parameter from the handler layer.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// SetLessonStatus upserts the (user, lesson) progress row.
func (s *Service) SetLessonStatus(ctx context.Context, userID, lessonID, status string) (LessonProgress, error) {
	if !validStatus(status) {
		return LessonProgress{}, ErrInvalidStatus
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM lessons WHERE id=$1`, lessonID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return LessonProgress{}, ErrLessonNotFound
	}
	if err != nil {
		return LessonProgress{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (user_id, lesson_id, status, viewed_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id, lesson_id) DO UPDATE SET status=EXCLUDED.status, viewed_at=EXCLUDED.viewed_at`,
		userID, lessonID, status, s.now().Unix())
	if err != nil {
		return LessonProgress{}, err
	}
	return LessonProgress{LessonID: lessonID, Status: status}, nil
}

// MarkSummary records whether the user has read a summary.
func (s *Service) MarkSummary(ctx context.Context, userID, summaryID string, read bool) (SummaryProgress, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM summaries WHERE id=$1`, summaryID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return SummaryProgress{}, ErrSummaryNotFound
	}
	if err != nil {
		return SummaryProgress{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summary_progress (user_id, summary_id, read, read_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id, summary_id) DO UPDATE SET read=EXCLUDED.read, read_at=EXCLUDED.read_at`,
		userID, summaryID, read, s.now().Unix())
	if err != nil {
		return SummaryProgress{}, err
	}
	return SummaryProgress{SummaryID: summaryID, Read: read}, nil
}

// ListLessonProgress returns the user's per-lesson statuses.
func (s *Service) ListLessonProgress(ctx context.Context, userID string) ([]LessonProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lesson_id, status FROM lesson_progress WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LessonProgress{}
	for rows.Next() {
		var p LessonProgress
		if err := rows.Scan(&p.LessonID, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stats computes the user's study aggregates.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lesson_progress WHERE user_id=$1 AND status=$2`,
		userID, StatusCompleted).Scan(&st.LessonsCompleted)
	if err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lessons`).Scan(&st.LessonsTotal); err != nil {
		return Stats{}, err
	}
	st.LessonsPending = st.LessonsTotal - st.LessonsCompleted
	if st.LessonsPending < 0 {
		st.LessonsPending = 0
	}

	if st.LessonsCompleted > 0 {
		var first, last int64
		err := s.db.QueryRowContext(ctx,
			`SELECT MIN(viewed_at), MAX(viewed_at) FROM lesson_progress WHERE user_id=$1 AND status=$2`,
			userID, StatusCompleted).Scan(&first, &last)
		if err != nil {
			return Stats{}, err
		}
		st.LessonsPerDay = PerDay(st.LessonsCompleted, time.Unix(first, 0), time.Unix(last, 0))
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summary_progress WHERE user_id=$1 AND read=$2`, userID, true).
		Scan(&st.SummariesRead)
	if err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&st.SummariesTotal); err != nil {
		return Stats{}, err
	}

	st.SubjectCompletion, err = s.subjectCompletion(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *Service) subjectCompletion(ctx context.Context, userID string) ([]SubjectCompletion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subj.id, subj.name,
		       COUNT(l.id) AS total,
		       COUNT(lp.lesson_id) AS completed
		FROM subjects subj
		LEFT JOIN lessons l ON l.subject_id = subj.id
		LEFT JOIN lesson_progress lp
		       ON lp.lesson_id = l.id AND lp.user_id = $1 AND lp.status = $2
		GROUP BY subj.id, subj.name
		ORDER BY subj.name`, userID, StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SubjectCompletion{}
	for rows.Next() {
		var sc SubjectCompletion
		var total, completed int
		if err := rows.Scan(&sc.SubjectID, &sc.SubjectName, &total, &completed); err != nil {
			return nil, err
		}
		sc.Percent = CompletionPercent(completed, total)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// PerDay is the average number of completions per active day, where
// the active span runs from the first to the last completion
// inclusive.
func PerDay(completed int, first, last time.Time) float64 {
	if completed <= 0 {
		return 0
	}
	days := int64(last.Sub(first).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return float64(completed) / float64(days)
}

// CompletionPercent guards the zero-lesson subject case.
func CompletionPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100.0
}
