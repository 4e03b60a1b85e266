package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/tally/internal/export"
)

var ErrNotConfigured = errors.New("spreadsheet export is not configured")

// Client mirrors exported transactions into one sheet of a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

// New builds a client. opts carry credentials, e.g. goption.WithCredentialsFile.
func New(ctx context.Context, spreadsheetID, sheet string, opts ...goption.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, ErrNotConfigured
	}

	opts = append([]goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}, opts...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

// Replace clears the sheet and writes the header followed by rows. It
// returns the number of rows written, header included.
func (c *Client) Replace(ctx context.Context, rows [][]string) (int64, error) {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.sheet, &gsheet.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", c.sheet, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, toValues(export.Columns))

	for _, row := range rows {
		values = append(values, toValues(row))
	}

	resp, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.sheet+"!A1", &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("write sheet %s: %w", c.sheet, err)
	}

	slog.InfoContext(ctx, "sheet updated", "sheet", c.sheet, "rows", resp.UpdatedRows)

	return resp.UpdatedRows, nil
}

func toValues(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}

	return out
}
