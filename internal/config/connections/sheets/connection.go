package sheets

import (
	"context"
	"errors"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type ConnectionInfo struct {
	CredentialsFile string
	SpreadsheetID   string
}

type Sheets struct {
	Service       *sheets.Service
	SpreadsheetID string
}

// NewConnection authorizes a read-only Sheets client with a service account key file.
func NewConnection(ctx context.Context, info ConnectionInfo) (*Sheets, error) {
	if info.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if info.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(info.CredentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Sheets{Service: svc, SpreadsheetID: info.SpreadsheetID}, nil
}
