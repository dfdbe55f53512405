package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/backpack-edu/backpack/internal/quiz"
	"github.com/backpack-edu/backpack/internal/rbac"
)

// GenerateExamHandler opens an attempt and returns the question set.
// The response deliberately never carries correctness flags or
// justifications; those stay server-side until submission.
func GenerateExamHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		subjectID := chi.URLParam(r, "subjectID")
		exam, err := svc.Generate(r.Context(), subjectID, userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, exam)
	}
}

// SubmitExamHandler grades a bulk answer submission for an attempt.
func SubmitExamHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		attemptID := chi.URLParam(r, "attemptID")
		var req struct {
			// topic id -> chosen option id
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Answers == nil {
			req.Answers = map[string]string{}
		}
		res, err := svc.Grade(r.Context(), attemptID, userID, req.Answers)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ListAttemptsHandler returns the caller's attempt history.
func ListAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		attempts, err := svc.ListAttempts(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if attempts == nil {
			attempts = []quiz.Attempt{}
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}
