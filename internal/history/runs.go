package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run summarizes one completed sync.
type Run struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Sessions   int       `json:"sessions"`
	Skipped    int       `json:"skipped"`
	Matched    int       `json:"matched"`
	Unmatched  int       `json:"unmatched"`
	Malformed  int       `json:"malformed"`
	Normalizer string    `json:"normalizer"`
	Threshold  float64   `json:"threshold"`
	Outputs    []string  `json:"outputs"`
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Pair is a song/artist combination that failed to match the catalog.
type Pair struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

// UnmatchedPair is a Pair with its ledger bookkeeping.
type UnmatchedPair struct {
	Pair
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	// Occurrences counts the runs that reported the pair.
	Occurrences int   `json:"occurrences"`
	LastRunID   int64 `json:"last_run_id"`
}

// RecordRun stores run and upserts every unmatched pair in a single
// transaction. It returns the ledger row id of the run.
func (s *Store) RecordRun(ctx context.Context, run Run, unmatched []Pair) (int64, error) {
	ctx = ensureContext(ctx)
	outputs := run.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	outputsJSON, err := json.Marshal(outputs)
	if err != nil {
		return 0, fmt.Errorf("marshal outputs: %w", err)
	}
	finished := run.FinishedAt.UTC().Format(time.RFC3339Nano)

	var id int64
	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`INSERT INTO sync_runs (
                run_uuid, started_at, finished_at, sessions, skipped,
                matched, unmatched, malformed, normalizer, threshold, outputs
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			finished,
			run.Sessions,
			run.Skipped,
			run.Matched,
			run.Unmatched,
			run.Malformed,
			run.Normalizer,
			run.Threshold,
			string(outputsJSON),
		)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		for _, pair := range unmatched {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO unmatched_pairs (song, artist, first_seen, last_seen, occurrences, last_run_id)
                VALUES (?, ?, ?, ?, 1, ?)
                ON CONFLICT(song, artist) DO UPDATE SET
                    last_seen = excluded.last_seen,
                    occurrences = occurrences + 1,
                    last_run_id = excluded.last_run_id`,
				pair.Song, pair.Artist, finished, finished, id,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, run_uuid, started_at, finished_at, sessions, skipped, matched,
        unmatched, malformed, normalizer, threshold, outputs
        FROM sync_runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw string
			outputsRaw  string
		)
		if err := rows.Scan(&run.ID, &run.RunID, &startedRaw, &finishedRaw, &run.Sessions, &run.Skipped,
			&run.Matched, &run.Unmatched, &run.Malformed, &run.Normalizer, &run.Threshold, &outputsRaw); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(startedRaw)
		run.FinishedAt = parseTime(finishedRaw)
		if err := json.Unmarshal([]byte(outputsRaw), &run.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs for run %d: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// UnmatchedPairs lists ledger pairs ordered by how often they recur.
func (s *Store) UnmatchedPairs(ctx context.Context, limit int) ([]UnmatchedPair, error) {
	ctx = ensureContext(ctx)
	query := `SELECT song, artist, first_seen, last_seen, occurrences, last_run_id
        FROM unmatched_pairs ORDER BY occurrences DESC, song, artist`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unmatched pairs: %w", err)
	}
	defer rows.Close()

	var pairs []UnmatchedPair
	for rows.Next() {
		var (
			pair      UnmatchedPair
			firstRaw  string
			lastRaw   string
			lastRunID sql.NullInt64
		)
		if err := rows.Scan(&pair.Song, &pair.Artist, &firstRaw, &lastRaw, &pair.Occurrences, &lastRunID); err != nil {
			return nil, fmt.Errorf("scan unmatched pair: %w", err)
		}
		pair.FirstSeen = parseTime(firstRaw)
		pair.LastSeen = parseTime(lastRaw)
		pair.LastRunID = lastRunID.Int64
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
