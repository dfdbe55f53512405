package catalog

import "errors"

var (
	ErrNotFound  = errors.New("catalog record not found")
	ErrDuplicate = errors.New("record with that name already exists")
	// ErrSecondCorrectOption guards the invariant the quiz engine
	// depends on: at most one correct option per topic.
	ErrSecondCorrectOption = errors.New("topic already has a correct option")
)

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Lesson struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subject_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	DurationSecs int    `json:"duration_secs"`
	Link         string `json:"link,omitempty"`
}

type Summary struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id,omitempty"`
	Title     string `json:"title"`
	Link      string `json:"link,omitempty"`
}

// Topic and Option rows mirror the question-bank tables the quiz
// engine samples from. This package owns their maintenance surface.
type Topic struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	Level     string `json:"level,omitempty"`
}

type Option struct {
	ID            string `json:"id"`
	TopicID       string `json:"topic_id"`
	Statement     string `json:"statement"`
	Correct       bool   `json:"correct"`
	Justification string `json:"justification,omitempty"`
}

// ListFilter narrows lesson/summary listings.
type ListFilter struct {
	SubjectID string
	Search    string
	Limit     int
	Offset    int
}

func (f ListFilter) withDefaults() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
