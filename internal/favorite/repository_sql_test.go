package favorite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	repo, db, err := OpenSQLite(filepath.Join(t.TempDir(), "favorites.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	first := Favorite{ID: "1", Name: "Milk", Labels: []string{}, Allergens: []string{}, DateAdded: base}
	second := Favorite{ID: "2", Name: "Bread", Labels: []string{}, Allergens: []string{"gluten"}, DateAdded: base.Add(time.Second)}

	for _, f := range []Favorite{second, first} {
		added, err := repo.Insert(ctx, 1, f)
		if err != nil || !added {
			t.Fatalf("insert %s: added=%v err=%v", f.ID, added, err)
		}
	}
	if added, err := repo.Insert(ctx, 1, first); err != nil || added {
		t.Fatalf("duplicate insert should be a no-op: added=%v err=%v", added, err)
	}

	list, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "1" || list[1].Allergens[0] != "gluten" {
		t.Fatalf("unexpected list %+v", list)
	}

	first.Price = 9
	if err := repo.Save(ctx, 1, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, 1, "1")
	if err != nil || got.Price != 9 {
		t.Fatalf("get after save: %+v %v", got, err)
	}
	if err := repo.Save(ctx, 2, first); !errors.Is(err, ErrNotFavorite) {
		t.Fatalf("expected ErrNotFavorite for other user, got %v", err)
	}

	if err := repo.Delete(ctx, 1, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, 1, "1"); !errors.Is(err, ErrNotFavorite) {
		t.Fatalf("expected ErrNotFavorite after delete, got %v", err)
	}
	if err := repo.Clear(ctx, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	list, _ = repo.List(ctx, 1)
	if len(list) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(list))
	}
}

func TestPostgresRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs(3, "42", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := repo.Insert(context.Background(), 3, Favorite{ID: "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Fatalf("conflicting insert should report added=false")
	}

	mock.ExpectQuery("SELECT payload FROM favorites").WithArgs(3, "42").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"id":"42","name":"Egg","labels":["Healthy"],"allergens":[]}`))
	f, err := repo.Get(context.Background(), 3, "42")
	if err != nil || f.Name != "Egg" || len(f.Labels) != 1 {
		t.Fatalf("unexpected favorite %+v %v", f, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
