package importitems

type ModelType string

const (
	ModelTypeActs     ModelType = "acts"
	ModelTypePayments ModelType = "payments"
)

// ModelTypeFor maps an import type to its record family; every table other
// than payments holds acts.
func ModelTypeFor(importType string) ModelType {
	if importType == string(ModelTypePayments) {
		return ModelTypePayments
	}
	return ModelTypeActs
}

const (
	StatusParsed     = "parsed"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
	StatusWarning    = "warning"
)
