package progress

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrSummaryNotFound = errors.New("summary not found")
	ErrInvalidStatus   = errors.New("invalid progress status")
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

func validStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type LessonProgress struct {
	LessonID string `json:"lesson_id"`
	Status   string `json:"status"`
}

type SummaryProgress struct {
	SummaryID string `json:"summary_id"`
	Read      bool   `json:"read"`
}

// Stats aggregates one user's study activity, mirroring what the
// dashboard renders.
type Stats struct {
	LessonsCompleted  int     `json:"lessons_completed"`
	LessonsPending    int     `json:"lessons_pending"`
	LessonsTotal      int     `json:"lessons_total"`
	LessonsPerDay     float64 `json:"lessons_per_day"`
	SummariesRead     int     `json:"summaries_read"`
	SummariesTotal    int     `json:"summaries_total"`
	SubjectCompletion []SubjectCompletion `json:"subject_completion"`
}

// SubjectCompletion is the percentage of a subject's lessons the user
// has completed.
type SubjectCompletion struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Percent     float64 `json:"percent"`
}
