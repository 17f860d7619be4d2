package database

import (
	"context"
	"fmt"

	"ledger_import/internal/models"

	"github.com/jackc/pgx/v5"
)

const createActsTableQuery = `
	CREATE TABLE %s (
		id SERIAL PRIMARY KEY,
		project_name VARCHAR(255),
		current_debt NUMERIC,
		act_sum NUMERIC,
		act_number VARCHAR(255),
		contractor VARCHAR(255),
		inn VARCHAR(50),
		contract_number VARCHAR(255),
		created_date DATE,
		signed_date DATE
	)
`

const insertActQuery = `
	INSERT INTO %s (
		project_name, current_debt, act_sum, act_number, contractor, inn,
		contract_number, created_date, signed_date
	)
	VALUES ($1, $2::numeric, $3::numeric, $4, $5, $6, $7, $8::date, $9::date)
`

type ActsRepo struct {
	db    TxBeginner
	table string
}

func NewActsRepo(db TxBeginner, table string) (*ActsRepo, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	return &ActsRepo{db: db, table: table}, nil
}

func (r *ActsRepo) Table() string { return r.table }

// Replace rewrites the whole table with acts. Drop, create and inserts
// share one transaction, so a failed run leaves the previous data intact.
func (r *ActsRepo) Replace(ctx context.Context, acts []models.Act) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", r.table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident := quote(r.table)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return 0, fmt.Errorf("%s: drop: %w", r.table, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(createActsTableQuery, ident)); err != nil {
		return 0, fmt.Errorf("%s: create: %w", r.table, err)
	}

	query := fmt.Sprintf(insertActQuery, ident)
	batch := &pgx.Batch{}
	for _, a := range acts {
		batch.Queue(query,
			strArg(a.ProjectName),
			numericArg(a.CurrentDebt),
			numericArg(a.ActSum),
			strArg(a.ActNumber),
			strArg(a.Contractor),
			strArg(a.INN),
			strArg(a.ContractNumber),
			dateArg(a.CreatedDate),
			dateArg(a.SignedDate),
		)
	}

	inserted, err := execBatch(ctx, tx, batch, len(acts))
	if err != nil {
		return 0, fmt.Errorf("%s: insert: %w", r.table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", r.table, err)
	}
	return int(inserted), nil
}
