package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// Journal persists every pipeline run's furthest state and draft id into
// SQLite so an operator can find orphaned drafts and resume by hand.
type Journal struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.RunJournal = (*Journal)(nil)

// Open creates (or opens) the journal database and ensures the schema.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Journal{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

const schema = `CREATE TABLE IF NOT EXISTS publish_runs (
    run_id      TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    draft_id    TEXT NOT NULL DEFAULT '',
    state       TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP
)`

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Begin inserts the run row at its starting state.
func (j *Journal) Begin(ctx context.Context, rec domain.RunRecord) error {
	if j == nil || j.db == nil {
		return nil
	}

	query, args, err := j.sb.Insert("publish_runs").
		Columns("run_id", "title", "state", "started_at").
		Values(rec.RunID, rec.Title, string(rec.State), rec.StartedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Advance records a successful state transition and, once known, the draft id.
func (j *Journal) Advance(ctx context.Context, runID string, state domain.RunState, draftID string) error {
	if j == nil || j.db == nil {
		return nil
	}

	update := j.sb.Update("publish_runs").
		Set("state", string(state)).
		Where(sq.Eq{"run_id": runID})
	if draftID != "" {
		update = update.Set("draft_id", draftID)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("advance run: %w", err)
	}
	return nil
}

// Finish stamps the terminal state; errMsg is empty on success.
func (j *Journal) Finish(ctx context.Context, runID string, state domain.RunState, errMsg string) error {
	if j == nil || j.db == nil {
		return nil
	}

	query, args, err := j.sb.Update("publish_runs").
		Set("state", string(state)).
		Set("error", errMsg).
		Set("finished_at", time.Now()).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := j.sb.Select("run_id", "title", "draft_id", "state", "error", "started_at", "finished_at").
		From("publish_runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var (
			rec      domain.RunRecord
			state    string
			finished sql.NullTime
		)
		if err := rows.Scan(&rec.RunID, &rec.Title, &rec.DraftID, &state, &rec.Error, &rec.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.State = domain.RunState(state)
		if finished.Valid {
			rec.FinishedAt = finished.Time
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
