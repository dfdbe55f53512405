package quiz

import (
	"context"
	"time"
)

// Repo is the data-access contract the engine runs against. Every
// method is scoped to the transaction the surrounding InTx call opened,
// so a failed generation or grading leaves no partial writes behind.
type Repo interface {
	// Question bank (read-only from the engine's perspective).
	SubjectExists(ctx context.Context, subjectID string) (bool, error)
	// RandomTopicsBySubject returns up to limit topics for the subject
	// in uniform-random order.
	RandomTopicsBySubject(ctx context.Context, subjectID string, limit int) ([]Topic, error)
	TopicByID(ctx context.Context, id string) (Topic, error)
	OptionByID(ctx context.Context, id string) (AnswerOption, error)
	// CorrectOption returns the topic's single correct option, or
	// ErrMissingCorrectOption when the catalog invariant is broken.
	CorrectOption(ctx context.Context, topicID string) (AnswerOption, error)
	// RandomIncorrectOptions returns up to n distinct incorrect options
	// in uniform-random order; it may return fewer than n.
	RandomIncorrectOptions(ctx context.Context, topicID string, n int) ([]AnswerOption, error)

	// Attempts.
	CreateAttempt(ctx context.Context, a Attempt) error
	// AttemptOwnedBy returns ErrAttemptNotFound for a missing id and
	// for an ownership mismatch alike.
	AttemptOwnedBy(ctx context.Context, id, userID string) (Attempt, error)
	ListAttemptsByUser(ctx context.Context, userID string) ([]Attempt, error)
	// FinalizeAttempt closes an open attempt. It must be conditional on
	// the attempt still being open and return ErrAttemptFinalized when
	// it is not, which is what serializes duplicate grading calls.
	FinalizeAttempt(ctx context.Context, id string, score float64, endedAt time.Time) error

	// Responses.
	SaveResponse(ctx context.Context, r Response) error
}

// Store runs a unit of work atomically: every Repo write inside fn
// becomes visible together, or not at all.
type Store interface {
	InTx(ctx context.Context, fn func(Repo) error) error
}
