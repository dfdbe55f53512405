package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Options sizes the assembled exams. Zero values fall back to the
// defaults used by the frontend (10 questions of 5 alternatives,
// sampled from a pool of up to 50 topics).
type Options struct {
	QuestionCount        int
	IncorrectPerQuestion int
	TopicPoolSize        int
}

func (o Options) withDefaults() Options {
	if o.QuestionCount <= 0 {
		o.QuestionCount = 10
	}
	if o.IncorrectPerQuestion <= 0 {
		o.IncorrectPerQuestion = 4
	}
	if o.TopicPoolSize <= 0 {
		o.TopicPoolSize = 50
	}
	// The pool must at least cover the target count or no bank,
	// however rich, could ever fill an exam.
	if o.TopicPoolSize < o.QuestionCount {
		o.TopicPoolSize = o.QuestionCount
	}
	return o
}

// Service assembles and grades mock exams. Identity is always an
// explicit parameter: callers resolve the authenticated user before
// invoking the engine and fail closed when they cannot.
type Service struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewService(store Store, opts Options) *Service {
	return &Service{store: store, opts: opts.withDefaults(), now: time.Now}
}

// Generate opens a new attempt for userID and assembles a randomized
// question set for the subject. The attempt and the question set
// commit together; any assembly failure rolls the attempt back so no
// orphaned, ungradable attempt survives.
func (s *Service) Generate(ctx context.Context, subjectID, userID string) (Exam, error) {
	var out Exam
	err := s.store.InTx(ctx, func(repo Repo) error {
		ok, err := repo.SubjectExists(ctx, subjectID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSubjectNotFound
		}

		attempt := Attempt{
			ID:        uuid.NewString(),
			UserID:    userID,
			StartedAt: s.now().UTC(),
		}
		if err := repo.CreateAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}

		pool, err := repo.RandomTopicsBySubject(ctx, subjectID, s.opts.TopicPoolSize)
		if err != nil {
			return fmt.Errorf("fetch topic pool: %w", err)
		}
		if len(pool) < s.opts.QuestionCount {
			return ErrInsufficientContent
		}

		questions := make([]Question, 0, s.opts.QuestionCount)
		for _, topic := range pool {
			if len(questions) >= s.opts.QuestionCount {
				break
			}
			q, ok, err := s.buildQuestion(ctx, repo, topic)
			if err != nil {
				return err
			}
			if !ok {
				// Topic lacks a correct option or enough incorrect
				// ones; skip it and keep walking the pool.
				continue
			}
			questions = append(questions, q)
		}
		if len(questions) < s.opts.QuestionCount {
			return ErrInsufficientContent
		}

		out = Exam{AttemptID: attempt.ID, Questions: questions}
		return nil
	})
	if err != nil {
		return Exam{}, err
	}
	return out, nil
}

// buildQuestion assembles one question for topic, or reports ok=false
// when the topic cannot yield a well-formed question.
func (s *Service) buildQuestion(ctx context.Context, repo Repo, topic Topic) (Question, bool, error) {
	correct, err := repo.CorrectOption(ctx, topic.ID)
	if errors.Is(err, ErrMissingCorrectOption) {
		return Question{}, false, nil
	}
	if err != nil {
		return Question{}, false, fmt.Errorf("correct option for topic %s: %w", topic.ID, err)
	}

	incorrect, err := repo.RandomIncorrectOptions(ctx, topic.ID, s.opts.IncorrectPerQuestion)
	if err != nil {
		return Question{}, false, fmt.Errorf("incorrect options for topic %s: %w", topic.ID, err)
	}
	if len(incorrect) < s.opts.IncorrectPerQuestion {
		return Question{}, false, nil
	}

	options := make([]OptionView, 0, len(incorrect)+1)
	for _, alt := range incorrect {
		options = append(options, OptionView{ID: alt.ID, Statement: alt.Statement})
	}
	options = append(options, OptionView{ID: correct.ID, Statement: correct.Statement})
	// Uniform permutation so the correct option's slot is unpredictable
	// and varies between generations of the same topic.
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{TopicID: topic.ID, Title: topic.Title, Options: options}, true, nil
}

// Grade scores a submitted attempt and finalizes it. All response rows
// and the attempt closure commit as one unit; any resolution failure
// aborts the whole submission and leaves the attempt open.
func (s *Service) Grade(ctx context.Context, attemptID, userID string, answers map[string]string) (Result, error) {
	var out Result
	err := s.store.InTx(ctx, func(repo Repo) error {
		attempt, err := repo.AttemptOwnedBy(ctx, attemptID, userID)
		if err != nil {
			return err
		}
		if attempt.EndedAt != nil {
			return ErrAttemptFinalized
		}

		graded := make([]GradedQuestion, 0, len(answers))
		correctCount := 0
		for topicID, chosenID := range answers {
			topic, err := repo.TopicByID(ctx, topicID)
			if err != nil {
				return err
			}
			chosen, err := repo.OptionByID(ctx, chosenID)
			if err != nil {
				return err
			}
			correct, err := repo.CorrectOption(ctx, topicID)
			if err != nil {
				return err
			}

			// The chosen option's own flag decides correctness. Under
			// the single-correct-option invariant this always agrees
			// with comparing ids against the resolved correct option;
			// the tests pin that agreement down.
			isCorrect := chosen.Correct
			if isCorrect {
				correctCount++
			}

			if err := repo.SaveResponse(ctx, Response{
				ID:             uuid.NewString(),
				AttemptID:      attempt.ID,
				TopicID:        topicID,
				ChosenOptionID: chosen.ID,
				Correct:        isCorrect,
			}); err != nil {
				return fmt.Errorf("save response: %w", err)
			}

			graded = append(graded, GradedQuestion{
				TopicID:          topicID,
				Title:            topic.Title,
				ChosenOptionID:   chosen.ID,
				ChosenStatement:  chosen.Statement,
				CorrectOptionID:  correct.ID,
				CorrectStatement: correct.Statement,
				Correct:          isCorrect,
				Justification:    correct.Justification,
			})
		}

		score := 0.0
		if len(answers) > 0 {
			score = float64(correctCount) / float64(len(answers)) * 100.0
		}

		if err := repo.FinalizeAttempt(ctx, attempt.ID, score, s.now().UTC()); err != nil {
			return err
		}

		out = Result{
			AttemptID:     attempt.ID,
			Score:         score,
			CorrectCount:  correctCount,
			TotalAnswered: len(answers),
			Questions:     graded,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return out, nil
}

// ListAttempts returns the user's attempt history, newest first.
func (s *Service) ListAttempts(ctx context.Context, userID string) ([]Attempt, error) {
	var out []Attempt
	err := s.store.InTx(ctx, func(repo Repo) error {
		var err error
		out, err = repo.ListAttemptsByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
