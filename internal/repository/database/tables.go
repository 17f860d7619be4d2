package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var ErrInvalidTable = errors.New("invalid table name")

var tableNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func validateTable(table string) error {
	if !tableNameRe.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// IsUniqueViolation reports a 23505 error from PostgreSQL.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func numericArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func strArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// execBatch runs n queued statements and returns the summed affected rows.
// The batch results are always closed before returning.
func execBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch, n int) (int64, error) {
	if n == 0 {
		return 0, nil
	}

	br := tx.SendBatch(ctx, b)

	var affected int64
	for i := 0; i < n; i++ {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return affected, fmt.Errorf("row %d: %w", i+1, err)
		}
		affected += tag.RowsAffected()
	}

	if err := br.Close(); err != nil {
		return affected, err
	}
	return affected, nil
}
