package progress_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/backpack-edu/backpack/internal/db"
	"github.com/backpack-edu/backpack/internal/progress"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func seed(t *testing.T, dbh *sql.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO users (id, name, email, password_hash, role, age, created_at)
		 VALUES ('u1','One','one@example.com','x','student',20,0)`,
		`INSERT INTO subjects (id, name) VALUES ('s1','Math'), ('s2','History')`,
		`INSERT INTO lessons (id, subject_id, title) VALUES
		 ('l1','s1','Algebra'), ('l2','s1','Geometry'), ('l3','s2','Rome'), ('l4','s2','Greece')`,
		`INSERT INTO summaries (id, subject_id, title) VALUES ('sum1','s1','Algebra recap')`,
	}
	for _, s := range stmts {
		if _, err := dbh.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestService_ProgressAndStats(t *testing.T) {
	dbh := openTestDB(t)
	seed(t, dbh)
	svc := progress.NewService(dbh)
	ctx := context.Background()

	if _, err := svc.SetLessonStatus(ctx, "u1", "l1", progress.StatusCompleted); err != nil {
		t.Fatalf("SetLessonStatus: %v", err)
	}
	if _, err := svc.SetLessonStatus(ctx, "u1", "l2", progress.StatusInProgress); err != nil {
		t.Fatalf("SetLessonStatus: %v", err)
	}
	// Upsert: same lesson flips to completed, no second row.
	if _, err := svc.SetLessonStatus(ctx, "u1", "l2", progress.StatusCompleted); err != nil {
		t.Fatalf("SetLessonStatus upsert: %v", err)
	}
	if _, err := svc.MarkSummary(ctx, "u1", "sum1", true); err != nil {
		t.Fatalf("MarkSummary: %v", err)
	}

	if _, err := svc.SetLessonStatus(ctx, "u1", "ghost", progress.StatusCompleted); err != progress.ErrLessonNotFound {
		t.Fatalf("ghost lesson: got %v, want ErrLessonNotFound", err)
	}
	if _, err := svc.SetLessonStatus(ctx, "u1", "l1", "done"); err != progress.ErrInvalidStatus {
		t.Fatalf("bad status: got %v, want ErrInvalidStatus", err)
	}

	st, err := svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.LessonsCompleted != 2 || st.LessonsTotal != 4 || st.LessonsPending != 2 {
		t.Fatalf("lesson stats: %+v", st)
	}
	if st.SummariesRead != 1 || st.SummariesTotal != 1 {
		t.Fatalf("summary stats: %+v", st)
	}
	if st.LessonsPerDay != 2 {
		t.Fatalf("lessons per day = %v, want 2 (both today)", st.LessonsPerDay)
	}

	byName := map[string]float64{}
	for _, sc := range st.SubjectCompletion {
		byName[sc.SubjectName] = sc.Percent
	}
	if byName["Math"] != 100 {
		t.Fatalf("Math completion = %v, want 100", byName["Math"])
	}
	if byName["History"] != 0 {
		t.Fatalf("History completion = %v, want 0", byName["History"])
	}

	ps, err := svc.ListLessonProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("ListLessonProgress: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("got %d progress rows, want 2", len(ps))
	}
}
