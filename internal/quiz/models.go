package quiz

import "time"

// Topic is one examinable unit of content from the question bank.
type Topic struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	Level     string `json:"level,omitempty"`
}

// AnswerOption is one alternative for a topic. Exactly one option per
// topic carries Correct=true; the assembler and grader both treat an
// absent correct option as corrupt catalog data, never as "incorrect".
type AnswerOption struct {
	ID            string `json:"id"`
	TopicID       string `json:"topic_id"`
	Statement     string `json:"statement"`
	Correct       bool   `json:"correct"`
	Justification string `json:"justification,omitempty"`
}

// Attempt is one exam session for one user. EndedAt is nil while the
// attempt is open; the grader sets it exactly once, together with the
// final score. A non-nil EndedAt makes the attempt terminal.
type Attempt struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	FinalScore float64    `json:"final_score"`
}

// Response is one graded answer record, written only by the grader and
// never updated afterwards.
type Response struct {
	ID             string `json:"id"`
	AttemptID      string `json:"attempt_id"`
	TopicID        string `json:"topic_id"`
	ChosenOptionID string `json:"chosen_option_id"`
	Correct        bool   `json:"correct"`
}

// OptionView is the student-facing projection of an option: id and
// text only. Correctness and justification stay server-side until
// grading.
type OptionView struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`
}

// Question is one assembled exam question with its options already
// shuffled into presentation order.
type Question struct {
	TopicID string       `json:"topic_id"`
	Title   string       `json:"title"`
	Options []OptionView `json:"options"`
}

// Exam is what generation returns: the open attempt id plus the
// question set the client should render.
type Exam struct {
	AttemptID string     `json:"attempt_id"`
	Questions []Question `json:"questions"`
}

// GradedQuestion is the per-topic breakdown revealed after grading.
// This is the only surface where the correct option and its
// justification reach the caller.
type GradedQuestion struct {
	TopicID          string `json:"topic_id"`
	Title            string `json:"title"`
	ChosenOptionID   string `json:"chosen_option_id"`
	ChosenStatement  string `json:"chosen_statement"`
	CorrectOptionID  string `json:"correct_option_id"`
	CorrectStatement string `json:"correct_statement"`
	Correct          bool   `json:"correct"`
	Justification    string `json:"justification"`
}

// Result summarizes a finalized attempt.
type Result struct {
	AttemptID     string           `json:"attempt_id"`
	Score         float64          `json:"score"`
	CorrectCount  int              `json:"correct_count"`
	TotalAnswered int              `json:"total_answered"`
	Questions     []GradedQuestion `json:"questions"`
}
