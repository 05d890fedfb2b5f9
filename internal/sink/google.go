package sink

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheets appends rows through the Sheets API.
type GoogleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
}

// NewGoogleSheets builds an API client. Callers pass the credential options,
// normally option.WithCredentialsJSON with a service account key.
func NewGoogleSheets(ctx context.Context, spreadsheetID, rng string, opts ...option.ClientOption) (*GoogleSheets, error) {
	if spreadsheetID == "" {
		return nil, ErrMissingGoogleCredentials
	}
	if rng == "" {
		rng = DefaultRange
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleSheets{svc: svc, spreadsheetID: spreadsheetID, rng: rng}, nil
}

// CredentialsOption turns a service account key into a client option.
func CredentialsOption(keyJSON string) (option.ClientOption, error) {
	if keyJSON == "" {
		return nil, ErrMissingGoogleCredentials
	}
	return option.WithCredentialsJSON([]byte(keyJSON)), nil
}

func (g *GoogleSheets) AppendRow(ctx context.Context, row []any) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", g.rng, err)
	}
	return nil
}
