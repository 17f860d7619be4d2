package normalizer

import "ledger_import/internal/models"

// Column offsets of the bank statement export.
const (
	PayColAccountNumber       = 0
	PayColOperationType       = 1
	PayColDate                = 2
	PayColAmount              = 5
	PayColPurpose             = 8
	PayColRecipientINN        = 17
	PayColRecipientName       = 19
	PayColCounterpartyAccount = 22
	PayColCounterpartyINN     = 23
	PayColCounterpartyName    = 24
	PayColCounterpartyBIK     = 25
)

// PaymentHeaderRows is the statement preamble above the first transaction.
const PaymentHeaderRows = 10

type PaymentResult struct {
	Payments []models.Payment
	Warnings []Warning
}

// NormalizePayments turns every non-blank row into a Payment. Rows are
// independent; nothing is carried between them.
func NormalizePayments(rows [][]string) PaymentResult {
	var (
		res   PaymentResult
		warns collector
	)

	for i, raw := range rows {
		row := Row(raw)
		if row.Blank() {
			continue
		}

		date, err := ParseDate(row.Cell(PayColDate), PaymentDateLayout)
		warns.add(i, PayColDate, "transaction_date", err)

		amount, err := ParseCurrency(row.Cell(PayColAmount))
		warns.add(i, PayColAmount, "amount", err)

		res.Payments = append(res.Payments, models.Payment{
			AccountNumber:       nullIfEmpty(row.Cell(PayColAccountNumber)),
			OperationType:       nullIfEmpty(row.Cell(PayColOperationType)),
			TransactionDate:     date,
			Amount:              amount,
			PaymentPurpose:      nullIfEmpty(row.Cell(PayColPurpose)),
			RecipientINN:        nullIfEmpty(row.Cell(PayColRecipientINN)),
			RecipientName:       nullIfEmpty(row.Cell(PayColRecipientName)),
			CounterpartyAccount: nullIfEmpty(row.Cell(PayColCounterpartyAccount)),
			CounterpartyINN:     nullIfEmpty(row.Cell(PayColCounterpartyINN)),
			CounterpartyName:    nullIfEmpty(row.Cell(PayColCounterpartyName)),
			CounterpartyBankBIK: nullIfEmpty(row.Cell(PayColCounterpartyBIK)),
		})
	}

	res.Warnings = warns.warnings
	return res
}
