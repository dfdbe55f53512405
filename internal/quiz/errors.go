package quiz

import "errors"

var (
	// ErrSubjectNotFound: the requested subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrTopicNotFound: a submitted answer references an unknown topic.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrOptionNotFound: a submitted answer references an unknown option.
	ErrOptionNotFound = errors.New("answer option not found")
	// ErrAttemptNotFound covers both a missing attempt id and an
	// ownership mismatch. The two are deliberately indistinguishable so
	// callers cannot probe which attempt ids exist.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrInsufficientContent: the subject cannot yield the requested
	// number of well-formed questions.
	ErrInsufficientContent = errors.New("not enough well-formed questions for subject")
	// ErrAttemptFinalized: grading was requested for an attempt that is
	// already terminal. The recorded score is never touched again.
	ErrAttemptFinalized = errors.New("attempt already finalized")
	// ErrMissingCorrectOption: a topic has no option flagged correct.
	// This is corrupt catalog data, not caller misuse; surface it for
	// catalog maintenance instead of grading the answer as wrong.
	ErrMissingCorrectOption = errors.New("topic has no correct option")
)
