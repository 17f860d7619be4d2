package database

import (
	"context"
	"fmt"

	"ledger_import/internal/models"

	"github.com/jackc/pgx/v5"
)

const paymentColumns = `account_number, operation_type, transaction_date, amount, payment_purpose,
		recipient_inn, recipient_name, counterparty_account, counterparty_inn,
		counterparty_name, counterparty_bank_bik`

// NULLS NOT DISTINCT (PostgreSQL 15+) makes rows with empty cells collide too.
const createPaymentsTableQuery = `
	CREATE TABLE IF NOT EXISTS %s (
		id SERIAL PRIMARY KEY,
		account_number VARCHAR(50),
		operation_type VARCHAR(50),
		transaction_date DATE,
		amount NUMERIC,
		payment_purpose TEXT,
		recipient_inn VARCHAR(20),
		recipient_name TEXT,
		counterparty_account VARCHAR(50),
		counterparty_inn VARCHAR(20),
		counterparty_name TEXT,
		counterparty_bank_bik VARCHAR(20),
		CONSTRAINT %s UNIQUE NULLS NOT DISTINCT (
		` + paymentColumns + `
		)
	)
`

const insertPaymentQuery = `
	INSERT INTO %s (
		` + paymentColumns + `
	)
	VALUES ($1, $2, $3::date, $4::numeric, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (
		` + paymentColumns + `
	) DO NOTHING
`

type PaymentsRepo struct {
	db    TxBeginner
	table string
}

func NewPaymentsRepo(db TxBeginner, table string) (*PaymentsRepo, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	return &PaymentsRepo{db: db, table: table}, nil
}

func (r *PaymentsRepo) Table() string { return r.table }

// constraint keeps the historical name on the shared payments table so an
// existing table and a freshly created one look the same.
func (r *PaymentsRepo) constraint() string {
	if r.table == "payments" {
		return "unique_payment"
	}
	return r.table + "_unique_payment"
}

// EnsureSchema creates the table when missing and commits on its own, so a
// later insert failure never rolls the schema back.
func (r *PaymentsRepo) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin schema: %w", r.table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(createPaymentsTableQuery, quote(r.table), quote(r.constraint()))
	if _, err := tx.Exec(ctx, query); err != nil {
		// concurrent CREATE TABLE IF NOT EXISTS can still trip over pg_type
		if IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("%s: create: %w", r.table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit schema: %w", r.table, err)
	}
	return nil
}

// Upsert inserts payments, silently skipping exact duplicates of stored
// rows, and returns how many rows were new. All rows commit together.
func (r *PaymentsRepo) Upsert(ctx context.Context, payments []models.Payment) (int, error) {
	if len(payments) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", r.table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(insertPaymentQuery, quote(r.table))
	batch := &pgx.Batch{}
	for _, p := range payments {
		batch.Queue(query,
			strArg(p.AccountNumber),
			strArg(p.OperationType),
			dateArg(p.TransactionDate),
			numericArg(p.Amount),
			strArg(p.PaymentPurpose),
			strArg(p.RecipientINN),
			strArg(p.RecipientName),
			strArg(p.CounterpartyAccount),
			strArg(p.CounterpartyINN),
			strArg(p.CounterpartyName),
			strArg(p.CounterpartyBankBIK),
		)
	}

	inserted, err := execBatch(ctx, tx, batch, len(payments))
	if err != nil {
		return 0, fmt.Errorf("%s: upsert: %w", r.table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", r.table, err)
	}
	return int(inserted), nil
}
