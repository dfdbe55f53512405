package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/backpack-edu/backpack/internal/api/http"
	auth "github.com/backpack-edu/backpack/internal/auth/middleware"
	"github.com/backpack-edu/backpack/internal/catalog"
	"github.com/backpack-edu/backpack/internal/db"
	"github.com/backpack-edu/backpack/internal/quiz"
	"github.com/backpack-edu/backpack/internal/rbac"
)

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	authSvc := auth.NewAuthService("test-secret")
	quizSvc := quiz.NewService(quiz.NewSQLStore(dbh), quiz.Options{})
	catalogStore := catalog.NewSQLStore(dbh)

	r := chi.NewRouter()
	r.Post("/auth/register", auth.RegisterHandler(dbh, authSvc))
	r.Post("/auth/login", auth.LoginHandler(dbh, authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.With(rbac.Require("quiz:generate")).
			Post("/quiz/subjects/{subjectID}/generate", api.GenerateExamHandler(quizSvc))
		pr.With(rbac.Require("quiz:submit")).
			Post("/quiz/attempts/{attemptID}/submit", api.SubmitExamHandler(quizSvc))
		pr.With(rbac.Require("catalog:manage")).
			Post("/subjects", api.CreateSubjectHandler(catalogStore))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { dbh.Close() })
	return srv, dbh
}

func seedQuizContent(t *testing.T, dbh *sql.DB, nTopics int) {
	t.Helper()
	if _, err := dbh.Exec(`INSERT INTO subjects (id, name) VALUES ('subj-1','Biology')`); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < nTopics; i++ {
		topicID := fmt.Sprintf("t%02d", i)
		if _, err := dbh.Exec(`INSERT INTO topics (id, subject_id, title, level) VALUES ($1,'subj-1',$2,'easy')`,
			topicID, "topic "+topicID); err != nil {
			t.Fatal(err)
		}
		if _, err := dbh.Exec(`INSERT INTO answer_options (id, topic_id, statement, is_correct, justification)
			VALUES ($1,$2,'right',1,'why')`, topicID+"-correct", topicID); err != nil {
			t.Fatal(err)
		}
		for j := 0; j < 4; j++ {
			if _, err := dbh.Exec(`INSERT INTO answer_options (id, topic_id, statement, is_correct, justification)
				VALUES ($1,$2,'wrong',0,'')`, fmt.Sprintf("%s-w%d", topicID, j), topicID); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func registerStudent(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"name": "Test Student", "email": email, "password": "hunter22", "age": 20,
	})
	resp, err := http.Post(srv.URL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out["access_token"]
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv, dbh := newTestServer(t)
	registerStudent(t, srv, "dup@example.com")

	body, _ := json.Marshal(map[string]any{
		"name": "Second Comer", "email": "dup@example.com", "password": "hunter22",
	})
	resp, err := http.Post(srv.URL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", resp.StatusCode)
	}

	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM users WHERE email='dup@example.com'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("%d rows for the email, want 1", n)
	}
}

func TestQuizFlow_EndToEnd(t *testing.T) {
	srv, dbh := newTestServer(t)
	seedQuizContent(t, dbh, 12)
	token := registerStudent(t, srv, "flow@example.com")

	// Generate.
	resp := doJSON(t, "POST", srv.URL+"/quiz/subjects/subj-1/generate", token, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate: status %d", resp.StatusCode)
	}
	var exam quiz.Exam
	if err := json.NewDecoder(resp.Body).Decode(&exam); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(exam.Questions) != 10 {
		t.Fatalf("got %d questions", len(exam.Questions))
	}

	// Submit all-correct.
	answers := map[string]string{}
	for _, q := range exam.Questions {
		answers[q.TopicID] = q.TopicID + "-correct"
	}
	resp = doJSON(t, "POST", srv.URL+"/quiz/attempts/"+exam.AttemptID+"/submit", token,
		map[string]any{"answers": answers})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	var res quiz.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if res.Score != 100.0 {
		t.Fatalf("score = %v", res.Score)
	}

	// Duplicate submit → conflict.
	resp = doJSON(t, "POST", srv.URL+"/quiz/attempts/"+exam.AttemptID+"/submit", token,
		map[string]any{"answers": answers})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submit: status %d, want 409", resp.StatusCode)
	}

	// Another user cannot touch the attempt.
	other := registerStudent(t, srv, "other@example.com")
	resp = doJSON(t, "POST", srv.URL+"/quiz/attempts/"+exam.AttemptID+"/submit", other,
		map[string]any{"answers": answers})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign submit: status %d, want 404", resp.StatusCode)
	}
}

func TestQuizFlow_ErrorMapping(t *testing.T) {
	srv, dbh := newTestServer(t)
	seedQuizContent(t, dbh, 8) // not enough for a 10-question exam
	token := registerStudent(t, srv, "errs@example.com")

	// No token → 401 before anything runs.
	resp := doJSON(t, "POST", srv.URL+"/quiz/subjects/subj-1/generate", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", resp.StatusCode)
	}

	// Unknown subject → 404.
	resp = doJSON(t, "POST", srv.URL+"/quiz/subjects/ghost/generate", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown subject: status %d, want 404", resp.StatusCode)
	}

	// Thin bank → 422, and no attempt row survives.
	resp = doJSON(t, "POST", srv.URL+"/quiz/subjects/subj-1/generate", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("insufficient content: status %d, want 422", resp.StatusCode)
	}
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("%d attempts persisted after failed generation", n)
	}

	// Students cannot manage the catalog.
	resp = doJSON(t, "POST", srv.URL+"/subjects", token, map[string]string{"name": "Chemistry"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student creating subject: status %d, want 403", resp.StatusCode)
	}
}
