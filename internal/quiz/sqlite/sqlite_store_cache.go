package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"
)

// Get reads one cache entry. A missing key is reported through the bool, not
// as an error.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM cache_entries WHERE key = ?`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Put writes all entries in one transaction so readers never see a partial sync.
func (s *SQLiteStore) Put(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixNano()
	for _, key := range keys {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO cache_entries (key, value, updated_at_unix)
			 VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at_unix = excluded.updated_at_unix`,
			key,
			entries[key],
			now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
