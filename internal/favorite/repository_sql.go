package favorite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type queries struct {
	list, get, insert, update, delete, clear string
}

// sqlRepository stores each favorite as a JSON payload row keyed by
// (user_id, product_id). The dialects only differ in placeholders.
type sqlRepository struct {
	db *sql.DB
	q  queries
}

type PostgresRepository struct {
	sqlRepository
}

type SQLiteRepository struct {
	sqlRepository
}

var postgresQueries = queries{
	list:   `SELECT payload FROM favorites WHERE user_id = $1 ORDER BY date_added, product_id`,
	get:    `SELECT payload FROM favorites WHERE user_id = $1 AND product_id = $2`,
	insert: `INSERT INTO favorites (user_id, product_id, payload, date_added) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id, product_id) DO NOTHING`,
	update: `UPDATE favorites SET payload = $1 WHERE user_id = $2 AND product_id = $3`,
	delete: `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`,
	clear:  `DELETE FROM favorites WHERE user_id = $1`,
}

var sqliteQueries = queries{
	list:   `SELECT payload FROM favorites WHERE user_id = ? ORDER BY date_added, product_id`,
	get:    `SELECT payload FROM favorites WHERE user_id = ? AND product_id = ?`,
	insert: `INSERT INTO favorites (user_id, product_id, payload, date_added) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, product_id) DO NOTHING`,
	update: `UPDATE favorites SET payload = ? WHERE user_id = ? AND product_id = ?`,
	delete: `DELETE FROM favorites WHERE user_id = ? AND product_id = ?`,
	clear:  `DELETE FROM favorites WHERE user_id = ?`,
}

// fixed width so text ordering in SQLite matches time ordering
const dateAddedLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS favorites (
  user_id INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  date_added TEXT NOT NULL,
  PRIMARY KEY (user_id, product_id)
);
`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{sqlRepository{db: db, q: postgresQueries}}
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{sqlRepository{db: db, q: sqliteQueries}}
}

// OpenSQLite opens (creating if needed) a single-file favorites store.
func OpenSQLite(path string) (*SQLiteRepository, *sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init favorites schema: %w", err)
	}
	return NewSQLiteRepository(db), db, nil
}

func (r *sqlRepository) List(ctx context.Context, userID int) ([]Favorite, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Favorite, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var f Favorite
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *sqlRepository) Get(ctx context.Context, userID int, id string) (Favorite, error) {
	var payload []byte
	if err := r.db.QueryRowContext(ctx, r.q.get, userID, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Favorite{}, ErrNotFavorite
		}
		return Favorite{}, err
	}
	var f Favorite
	if err := json.Unmarshal(payload, &f); err != nil {
		return Favorite{}, err
	}
	return f, nil
}

func (r *sqlRepository) Insert(ctx context.Context, userID int, f Favorite) (bool, error) {
	payload, err := json.Marshal(f)
	if err != nil {
		return false, err
	}
	result, err := r.db.ExecContext(ctx, r.q.insert, userID, f.ID, string(payload), f.DateAdded.UTC().Format(dateAddedLayout))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sqlRepository) Save(ctx context.Context, userID int, f Favorite) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, r.q.update, string(payload), userID, f.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFavorite
	}
	return nil
}

func (r *sqlRepository) Delete(ctx context.Context, userID int, id string) error {
	_, err := r.db.ExecContext(ctx, r.q.delete, userID, id)
	return err
}

func (r *sqlRepository) Clear(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, r.q.clear, userID)
	return err
}
