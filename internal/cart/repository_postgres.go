package cart

import (
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresRepository keeps the cart as a jsonb object on the users row.
type PostgresRepository struct {
	db *sql.DB
}

const (
	selectCartQuery          = `SELECT cart FROM users WHERE "userId" = $1`
	selectCartForUpdateQuery = selectCartQuery + ` FOR UPDATE`
	updateCartQuery          = `UPDATE users SET cart = $1, "updateAt" = $2 WHERE "userId" = $3`
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Adjust(userID int, ean string, delta int, updatedAt string) (map[string]int, error) {
	if delta == 0 {
		return r.Quantities(userID)
	}
	return r.modify(userID, updatedAt, func(lines map[string]int) bool {
		applyDelta(lines, ean, delta)
		return true
	})
}

func (r *PostgresRepository) Quantities(userID int) (map[string]int, error) {
	return scanLines(r.db.QueryRow(selectCartQuery, userID))
}

func (r *PostgresRepository) Remove(userID int, ean string, updatedAt string) (map[string]int, error) {
	return r.modify(userID, updatedAt, func(lines map[string]int) bool {
		if _, ok := lines[ean]; !ok {
			return false
		}
		delete(lines, ean)
		return true
	})
}

func (r *PostgresRepository) Clear(userID int, updatedAt string) error {
	return writeLines(r.db, userID, map[string]int{}, updatedAt)
}

// modify locks the user's cart row for the read-modify-write so concurrent
// changes to the same cart apply one after another. change reports whether it
// altered lines; unchanged carts are not written.
func (r *PostgresRepository) modify(userID int, updatedAt string, change func(map[string]int) bool) (map[string]int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lines, err := scanLines(tx.QueryRow(selectCartForUpdateQuery, userID))
	if err != nil {
		return nil, err
	}
	if !change(lines) {
		return lines, nil
	}
	if err := writeLines(tx, userID, lines, updatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return lines, nil
}

func scanLines(row *sql.Row) (map[string]int, error) {
	var raw sql.NullString
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	lines := make(map[string]int)
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &lines); err != nil {
			// legacy rows held an array of product ids; start over
			lines = make(map[string]int)
		}
	}
	for k, v := range lines {
		if v <= 0 {
			delete(lines, k)
		}
	}
	return lines, nil
}

func writeLines(db execer, userID int, lines map[string]int, updatedAt string) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	result, err := db.Exec(updateCartQuery, string(payload), updatedAt, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
