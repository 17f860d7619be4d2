package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Act is one row of the documents ledger. A nil field means the cell was
// empty or could not be parsed.
type Act struct {
	ProjectName    *string
	CurrentDebt    *decimal.Decimal
	ActSum         *decimal.Decimal
	ActNumber      *string
	Contractor     *string
	INN            *string
	ContractNumber *string
	CreatedDate    *time.Time
	SignedDate     *time.Time
}
