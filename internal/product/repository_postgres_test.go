package product

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	payload, _ := json.Marshal(Product{ID: "12345678", EAN: "12345678", Name: "Egg", Labels: []string{"Healthy"}})
	mock.ExpectQuery("SELECT payload").WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	p, err := repo.Get(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Egg" || len(p.Labels) != 1 {
		t.Fatalf("unexpected product %+v", p)
	}

	mock.ExpectQuery("SELECT payload").WithArgs("00000000").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	if _, err := repo.Get(context.Background(), "00000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("INSERT INTO product_cache").
		WithArgs("12345678", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Put(context.Background(), Product{EAN: "12345678", Name: "Egg"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Put(context.Background(), Product{Name: "no ean"}); !errors.Is(err, ErrInvalidEAN) {
		t.Fatalf("expected ErrInvalidEAN, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_ListByLabels(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	a, _ := json.Marshal(Product{EAN: "1", Labels: []string{"Healthy"}})
	b, _ := json.Marshal(Product{EAN: "2", Labels: []string{"Healthy", "High protein"}})
	rows := sqlmock.NewRows([]string{"payload"}).AddRow(a).AddRow([]byte("not json")).AddRow(b)
	mock.ExpectQuery("FROM product_cache").WithArgs(sqlmock.AnyArg(), 10).WillReturnRows(rows)

	products, err := repo.ListByLabels(context.Background(), []string{"Healthy"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[1].EAN != "2" {
		t.Fatalf("unexpected order: %+v", products)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
