package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one bank statement line. All eleven fields together identify it.
type Payment struct {
	AccountNumber       *string
	OperationType       *string
	TransactionDate     *time.Time
	Amount              *decimal.Decimal
	PaymentPurpose      *string
	RecipientINN        *string
	RecipientName       *string
	CounterpartyAccount *string
	CounterpartyINN     *string
	CounterpartyName    *string
	CounterpartyBankBIK *string
}
