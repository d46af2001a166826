package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_results (
			result_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			status TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			time_taken INTEGER NOT NULL,
			max_time INTEGER NOT NULL,
			-- full per-question detail, decoded back into ResultSummary on read
			summary_json TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_rank ON quiz_results(score DESC, time_taken ASC, created_at_unix ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_session ON quiz_results(session_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
