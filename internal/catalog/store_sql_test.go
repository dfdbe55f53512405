package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/backpack-edu/backpack/internal/catalog"
	"github.com/backpack-edu/backpack/internal/db"
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

func TestCreateOption_SecondCorrectRejected(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewSQLStore(openTestDB(t))

	subj, err := store.CreateSubject(ctx, "Geography")
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	topic, err := store.CreateTopic(ctx, catalog.Topic{SubjectID: subj.ID, Title: "Capitals", Level: "easy"})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}

	if _, err := store.CreateOption(ctx, catalog.Option{
		TopicID:       topic.ID,
		Statement:     "Brasília",
		Correct:       true,
		Justification: "capital since 1960",
	}); err != nil {
		t.Fatalf("first correct option: %v", err)
	}

	_, err = store.CreateOption(ctx, catalog.Option{
		TopicID:   topic.ID,
		Statement: "Rio de Janeiro",
		Correct:   true,
	})
	if !errors.Is(err, catalog.ErrSecondCorrectOption) {
		t.Fatalf("second correct option: got %v, want ErrSecondCorrectOption", err)
	}

	// Incorrect options stay unrestricted.
	if _, err := store.CreateOption(ctx, catalog.Option{
		TopicID:   topic.ID,
		Statement: "São Paulo",
	}); err != nil {
		t.Fatalf("incorrect option after rejection: %v", err)
	}

	opts, err := store.ListOptionsByTopic(ctx, topic.ID)
	if err != nil {
		t.Fatalf("list options: %v", err)
	}
	correct := 0
	for _, o := range opts {
		if o.Correct {
			correct++
		}
	}
	if len(opts) != 2 || correct != 1 {
		t.Fatalf("got %d options with %d correct, want 2 with 1", len(opts), correct)
	}
}

func TestCreateOption_UnknownTopic(t *testing.T) {
	store := catalog.NewSQLStore(openTestDB(t))
	_, err := store.CreateOption(context.Background(), catalog.Option{TopicID: "ghost", Statement: "x"})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
