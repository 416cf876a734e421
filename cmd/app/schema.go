package main

import "database/sql"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		"userId" SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		"firstName" TEXT,
		"lastName" TEXT,
		phone TEXT,
		"dateOfBirth" TEXT,
		goals jsonb NOT NULL DEFAULT '{}',
		restrictions text[] NOT NULL DEFAULT '{}',
		cart jsonb NOT NULL DEFAULT '{}',
		"createAt" TEXT,
		"updateAt" TEXT
	)`,
	// columns added after the first release
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS "dateOfBirth" TEXT`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS goals jsonb NOT NULL DEFAULT '{}'`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS restrictions text[] NOT NULL DEFAULT '{}'`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS cart jsonb NOT NULL DEFAULT '{}'`,
	`CREATE TABLE IF NOT EXISTS product_cache (
		ean TEXT PRIMARY KEY,
		payload jsonb NOT NULL,
		labels text[] NOT NULL DEFAULT '{}',
		fetched_at timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS product_cache_labels_idx ON product_cache USING GIN (labels)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id INT NOT NULL,
		product_id TEXT NOT NULL,
		payload jsonb NOT NULL,
		date_added timestamptz NOT NULL,
		PRIMARY KEY (user_id, product_id)
	)`,
}

func ensureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
