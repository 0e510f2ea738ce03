// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package ledger keeps a SQLite record of every job submission so that the
// scheduler handles of a sweep can be looked up after the dispatcher exits.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alessio/shellescape"
	"github.com/gammazero/deque"
	"github.com/petenewcomb/sweep-go"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	sweep_id     TEXT    NOT NULL,
	idx          INTEGER NOT NULL,
	category     TEXT    NOT NULL,
	dataset      TEXT    NOT NULL,
	job_name     TEXT    NOT NULL,
	command      TEXT    NOT NULL,
	handle       TEXT    NOT NULL DEFAULT '',
	error        TEXT    NOT NULL DEFAULT '',
	submitted_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_sweep ON submissions (sweep_id, idx);
`

// Entry is one recorded submission.
type Entry struct {
	SweepID     string
	Index       int
	Category    string
	Dataset     string
	JobName     string
	Command     string
	Handle      string
	Error       string
	SubmittedAt time.Time
}

func (e Entry) OK() bool {
	return e.Error == ""
}

// Summary counts the recorded submissions of one sweep.
type Summary struct {
	SweepID   string
	Jobs      int
	Failed    int
	FirstSeen time.Time
}

type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	// Serialize access; SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Join(fmt.Errorf("initializing ledger %s: %w", path, err), db.Close())
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Recorder returns a recorder that appends the results of sweep sweepID to
// the ledger in transactions of up to batchSize rows.
func (l *Ledger) Recorder(sweepID string, batchSize int) *Recorder {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Recorder{
		ledger:    l,
		sweepID:   sweepID,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// List returns the entries recorded for sweepID in job order. Resubmitted
// jobs appear once per submission.
func (l *Ledger) List(ctx context.Context, sweepID string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT sweep_id, idx, category, dataset, job_name, command, handle, error, submitted_at
		FROM submissions WHERE sweep_id = ? ORDER BY idx, submitted_at, rowid`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("listing sweep %q: %w", sweepID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.SweepID, &e.Index, &e.Category, &e.Dataset, &e.JobName,
			&e.Command, &e.Handle, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("listing sweep %q: %w", sweepID, err)
		}
		if e.SubmittedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("listing sweep %q: bad timestamp: %w", sweepID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Sweeps summarizes every sweep in the ledger, oldest first.
func (l *Ledger) Sweeps(ctx context.Context) ([]Summary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT sweep_id, COUNT(*), SUM(error != ''), MIN(submitted_at)
		FROM submissions GROUP BY sweep_id ORDER BY MIN(submitted_at), sweep_id`)
	if err != nil {
		return nil, fmt.Errorf("listing sweeps: %w", err)
	}
	defer rows.Close()

	var sums []Summary
	for rows.Next() {
		var s Summary
		var at string
		if err := rows.Scan(&s.SweepID, &s.Jobs, &s.Failed, &at); err != nil {
			return nil, fmt.Errorf("listing sweeps: %w", err)
		}
		if s.FirstSeen, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("listing sweeps: bad timestamp: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// A Recorder buffers dispatch results and writes them to its ledger in
// batches. Its Record method has the signature of [sweep.Dispatcher.OnResult]
// and, like it, must be called from a single goroutine.
type Recorder struct {
	ledger    *Ledger
	sweepID   string
	batchSize int
	now       func() time.Time
	pending   deque.Deque[Entry]
	err       error
}

// Record queues r, flushing the queue once it holds a full batch. A write
// failure is kept and returned by [Recorder.Close]; later results are still
// queued.
func (r *Recorder) Record(res sweep.Result) {
	e := Entry{
		SweepID:     r.sweepID,
		Index:       res.Job.Index(),
		Category:    res.Job.Category(),
		Dataset:     string(res.Job.Params().Dataset),
		JobName:     res.Job.Name(),
		Command:     shellescape.QuoteCommand(res.Job.Command()),
		Handle:      res.Handle.ID,
		SubmittedAt: r.now().UTC(),
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	r.pending.PushBack(e)
	if r.pending.Len() >= r.batchSize {
		if err := r.Flush(context.Background()); err != nil && r.err == nil {
			r.err = err
		}
	}
}

// Flush writes every queued entry in one transaction. Entries stay queued if
// the transaction fails.
func (r *Recorder) Flush(ctx context.Context) error {
	if r.pending.Len() == 0 {
		return nil
	}
	tx, err := r.ledger.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording sweep %q: %w", r.sweepID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submissions
			(sweep_id, idx, category, dataset, job_name, command, handle, error, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Join(fmt.Errorf("recording sweep %q: %w", r.sweepID, err), tx.Rollback())
	}
	defer stmt.Close()
	for i := range r.pending.Len() {
		e := r.pending.At(i)
		if _, err := stmt.ExecContext(ctx, e.SweepID, e.Index, e.Category, e.Dataset, e.JobName,
			e.Command, e.Handle, e.Error, e.SubmittedAt.Format(time.RFC3339Nano)); err != nil {
			return errors.Join(fmt.Errorf("recording %s: %w", e.JobName, err), tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording sweep %q: %w", r.sweepID, err)
	}
	r.pending.Clear()
	return nil
}

// Close flushes the remaining entries and returns the first error
// encountered by the recorder. It does not close the ledger.
func (r *Recorder) Close(ctx context.Context) error {
	err := r.Flush(ctx)
	if r.err != nil {
		return r.err
	}
	return err
}
