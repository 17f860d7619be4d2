package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ddlTableRe    = regexp.MustCompile(`TABLE\s+(?:IF\s+(?:NOT\s+)?EXISTS\s+)?"?(\w+)"?`)
	insertTableRe = regexp.MustCompile(`INSERT INTO\s+"?(\w+)"?`)
)

// fakeDB is an in-memory stand-in for PostgreSQL that understands just the
// statements the repos issue. Changes become visible on Commit.
type fakeDB struct {
	tables map[string][][]any

	beginErr     error
	createErr    error
	failInsertAt int

	commits   int
	rollbacks int
	log       []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{tables: map[string][][]any{}}
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return &fakeTx{db: db, staged: map[string][][]any{}, dropped: map[string]bool{}}, nil
}

type fakeTx struct {
	pgx.Tx

	db      *fakeDB
	staged  map[string][][]any
	dropped map[string]bool
	done    bool
	inserts int
}

func (tx *fakeTx) rows(table string) ([][]any, bool) {
	if rows, ok := tx.staged[table]; ok {
		return rows, true
	}
	if tx.dropped[table] {
		return nil, false
	}
	rows, ok := tx.db.tables[table]
	return rows, ok
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	sql = strings.TrimSpace(sql)
	tx.db.log = append(tx.db.log, firstWords(sql))

	switch {
	case strings.HasPrefix(sql, "DROP TABLE"):
		table := ddlTableRe.FindStringSubmatch(sql)[1]
		delete(tx.staged, table)
		tx.dropped[table] = true
		return pgconn.NewCommandTag("DROP TABLE"), nil

	case strings.HasPrefix(sql, "CREATE TABLE"):
		if tx.db.createErr != nil {
			return pgconn.CommandTag{}, tx.db.createErr
		}
		table := ddlTableRe.FindStringSubmatch(sql)[1]
		if _, ok := tx.rows(table); ok {
			if strings.Contains(sql, "IF NOT EXISTS") {
				return pgconn.NewCommandTag("CREATE TABLE"), nil
			}
			return pgconn.CommandTag{}, fmt.Errorf("relation %q already exists", table)
		}
		tx.staged[table] = [][]any{}
		return pgconn.NewCommandTag("CREATE TABLE"), nil

	case strings.HasPrefix(sql, "INSERT INTO"):
		tx.inserts++
		if tx.db.failInsertAt > 0 && tx.inserts == tx.db.failInsertAt {
			return pgconn.CommandTag{}, errors.New("insert failed")
		}
		table := insertTableRe.FindStringSubmatch(sql)[1]
		rows, ok := tx.rows(table)
		if !ok {
			return pgconn.CommandTag{}, fmt.Errorf("relation %q does not exist", table)
		}
		if strings.Contains(sql, "ON CONFLICT") {
			key := fmt.Sprint(args...)
			for _, r := range rows {
				if fmt.Sprint(r...) == key {
					return pgconn.NewCommandTag("INSERT 0 0"), nil
				}
			}
		}
		tx.staged[table] = append(append([][]any{}, rows...), args)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}

	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
}

func (tx *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return &fakeBatch{ctx: ctx, tx: tx, queued: b.QueuedQueries}
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	for table := range tx.dropped {
		delete(tx.db.tables, table)
	}
	for table, rows := range tx.staged {
		tx.db.tables[table] = rows
	}
	tx.db.commits++
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.rollbacks++
	return nil
}

type fakeBatch struct {
	pgx.BatchResults

	ctx    context.Context
	tx     *fakeTx
	queued []*pgx.QueuedQuery
	pos    int
}

func (b *fakeBatch) Exec() (pgconn.CommandTag, error) {
	if b.pos >= len(b.queued) {
		return pgconn.CommandTag{}, errors.New("no more queued queries")
	}
	q := b.queued[b.pos]
	b.pos++
	return b.tx.Exec(b.ctx, q.SQL, q.Arguments...)
}

func (b *fakeBatch) Close() error { return nil }

func firstWords(sql string) string {
	f := strings.Fields(sql)
	if len(f) > 2 {
		f = f[:2]
	}
	return strings.Join(f, " ")
}
