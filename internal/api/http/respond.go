package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/backpack-edu/backpack/internal/catalog"
	"github.com/backpack-edu/backpack/internal/progress"
	"github.com/backpack-edu/backpack/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses. Unknown
// errors are logged and surfaced as a bare 500 so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrSubjectNotFound),
		errors.Is(err, quiz.ErrTopicNotFound),
		errors.Is(err, quiz.ErrOptionNotFound),
		errors.Is(err, quiz.ErrAttemptNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, progress.ErrLessonNotFound),
		errors.Is(err, progress.ErrSummaryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quiz.ErrInsufficientContent):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, quiz.ErrAttemptFinalized):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrDuplicate),
		errors.Is(err, catalog.ErrSecondCorrectOption),
		errors.Is(err, progress.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrMissingCorrectOption):
		// Corrupt catalog data, not caller misuse. Log loudly so it
		// reaches whoever maintains the question bank.
		log.Printf("catalog integrity: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
