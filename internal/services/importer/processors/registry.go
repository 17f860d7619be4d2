package processors

import (
	"fmt"

	"ledger_import/internal/ports"
	"ledger_import/internal/repository/database"
)

const PaymentsTable = "payments"

// DefaultRegistry wires one acts processor per acts table plus the shared
// payments processor, keyed by their type.
func DefaultRegistry(db database.TxBeginner, actTables []string) (map[string]ports.Processor, error) {
	reg := make(map[string]ports.Processor, len(actTables)+1)

	pay, err := database.NewPaymentsRepo(db, PaymentsTable)
	if err != nil {
		return nil, err
	}
	reg[PaymentsTable] = PaymentsProcessor{Store: pay}

	for _, table := range actTables {
		if _, dup := reg[table]; dup {
			return nil, fmt.Errorf("table %q registered twice", table)
		}
		repo, err := database.NewActsRepo(db, table)
		if err != nil {
			return nil, err
		}
		reg[table] = ActsProcessor{Store: repo}
	}

	return reg, nil
}
