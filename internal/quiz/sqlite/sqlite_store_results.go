package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"sheet-quiz/internal/quiz"
)

func (s *SQLiteStore) SaveResult(ctx context.Context, summary quiz.ResultSummary) error {
	if strings.TrimSpace(summary.ResultID) == "" {
		return errors.New("result id is required")
	}
	if summary.FinishedAt.IsZero() {
		summary.FinishedAt = time.Now().UTC()
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO quiz_results (result_id, session_id, status, score, total, time_taken, max_time, summary_json, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(result_id) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			total = excluded.total,
			time_taken = excluded.time_taken,
			max_time = excluded.max_time,
			summary_json = excluded.summary_json`,
		summary.ResultID,
		summary.SessionID,
		summary.Status,
		summary.Score,
		summary.TotalQuestionsAsked,
		summary.TimeTaken,
		summary.MaxTime,
		string(summaryJSON),
		summary.FinishedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) GetResult(ctx context.Context, resultID string) (quiz.ResultSummary, error) {
	var summaryJSON string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT summary_json FROM quiz_results WHERE result_id = ?`,
		resultID,
	).Scan(&summaryJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.ResultSummary{}, quiz.ErrResultNotFound
		}
		return quiz.ResultSummary{}, err
	}
	return decodeSummary(summaryJSON)
}

// ListResults returns results best first: higher score, then less time taken,
// then the earlier finish. limit <= 0 means no limit.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]quiz.ResultSummary, error) {
	query := `SELECT summary_json FROM quiz_results
		ORDER BY score DESC, time_taken ASC, created_at_unix ASC, result_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]quiz.ResultSummary, 0)
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, err
		}
		summary, err := decodeSummary(summaryJSON)
		if err != nil {
			return nil, err
		}
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func decodeSummary(data string) (quiz.ResultSummary, error) {
	var summary quiz.ResultSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return quiz.ResultSummary{}, err
	}
	return summary, nil
}
