package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/backpack-edu/backpack/internal/catalog"
)

/* ---------------- subjects ---------------- */

func ListSubjectsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := store.ListSubjects(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

func GetSubjectHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := store.SubjectByID(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func CreateSubjectHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "name required")
			return
		}
		sub, err := store.CreateSubject(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func UpdateSubjectHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "name required")
			return
		}
		sub, err := store.UpdateSubject(r.Context(), chi.URLParam(r, "subjectID"), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func DeleteSubjectHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSubject(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

/* ---------------- lessons ---------------- */

func listFilterFromQuery(r *http.Request) catalog.ListFilter {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return catalog.ListFilter{
		SubjectID: r.URL.Query().Get("subject_id"),
		Search:    r.URL.Query().Get("q"),
		Limit:     limit,
		Offset:    offset,
	}
}

func ListLessonsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessons, err := store.ListLessons(r.Context(), listFilterFromQuery(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lessons)
	}
}

func GetLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := store.LessonByID(r.Context(), chi.URLParam(r, "lessonID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func CreateLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l catalog.Lesson
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil || l.Title == "" {
			writeError(w, http.StatusBadRequest, "title required")
			return
		}
		created, err := store.CreateLesson(r.Context(), l)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l catalog.Lesson
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil || l.Title == "" {
			writeError(w, http.StatusBadRequest, "title required")
			return
		}
		l.ID = chi.URLParam(r, "lessonID")
		updated, err := store.UpdateLesson(r.Context(), l)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteLesson(r.Context(), chi.URLParam(r, "lessonID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

/* ---------------- summaries ---------------- */

func ListSummariesHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sums, err := store.ListSummaries(r.Context(), listFilterFromQuery(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sums)
	}
}

func GetSummaryHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sm, err := store.SummaryByID(r.Context(), chi.URLParam(r, "summaryID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sm)
	}
}

func CreateSummaryHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sm catalog.Summary
		if err := json.NewDecoder(r.Body).Decode(&sm); err != nil || sm.Title == "" {
			writeError(w, http.StatusBadRequest, "title required")
			return
		}
		created, err := store.CreateSummary(r.Context(), sm)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateSummaryHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sm catalog.Summary
		if err := json.NewDecoder(r.Body).Decode(&sm); err != nil || sm.Title == "" {
			writeError(w, http.StatusBadRequest, "title required")
			return
		}
		sm.ID = chi.URLParam(r, "summaryID")
		updated, err := store.UpdateSummary(r.Context(), sm)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteSummaryHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSummary(r.Context(), chi.URLParam(r, "summaryID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

/* ---------------- question bank maintenance ---------------- */

func CreateTopicHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t catalog.Topic
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil || t.Title == "" || t.SubjectID == "" {
			writeError(w, http.StatusBadRequest, "subject_id and title required")
			return
		}
		created, err := store.CreateTopic(r.Context(), t)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func ListTopicsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := store.ListTopicsBySubject(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, topics)
	}
}

func DeleteTopicHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteTopic(r.Context(), chi.URLParam(r, "topicID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateOptionHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var o catalog.Option
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil || o.Statement == "" {
			writeError(w, http.StatusBadRequest, "statement required")
			return
		}
		o.TopicID = chi.URLParam(r, "topicID")
		created, err := store.CreateOption(r.Context(), o)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func ListOptionsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := store.ListOptionsByTopic(r.Context(), chi.URLParam(r, "topicID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, opts)
	}
}

func DeleteOptionHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteOption(r.Context(), chi.URLParam(r, "optionID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
