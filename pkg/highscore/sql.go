package highscore

import (
	"database/sql"
)

func buildCreateBlobsTable() string {
	return `CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL);`
}

func buildSelectBlobCommand(key string) (string, []any, func(*sql.Rows) (string, error)) {
	return `SELECT value FROM blobs WHERE key = ?`, []any{key}, processSelectBlobRows
}

func processSelectBlobRows(rows *sql.Rows) (string, error) {
	defer rows.Close()

	// only can be one row
	if rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return "", err
		}
		return value, nil
	}
	return "", rows.Err()
}

func buildUpsertBlobCommand(key, blob string) (string, []any) {
	return `INSERT OR REPLACE INTO blobs (key, value) VALUES (?, ?)`, []any{key, blob}
}
