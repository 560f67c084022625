// Package sheets stores prayer requests in a Google Sheets spreadsheet, one
// tab per log partition.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"prayer_bot/internal/model"
)

// Sink appends rows to tabs of one spreadsheet.
type Sink struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// New creates a Sink for spreadsheetID.
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Sink, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Sink{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ServiceAccount returns a client option authenticating with the service
// account key stored at path.
func ServiceAccount(ctx context.Context, path string) (option.ClientOption, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, gsheets.SpreadsheetsScope, gsheets.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	return option.WithTokenSource(conf.TokenSource(ctx)), nil
}

// EnsurePartition adds a tab named partition unless it already exists.
func (s *Sink) EnsurePartition(ctx context.Context, partition string) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == partition {
			return nil
		}
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: partition},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		if alreadyExists(err) {
			return nil
		}
		return fmt.Errorf("add sheet %q: %w", partition, err)
	}
	return nil
}

// AppendRow appends row below the last row of the partition's tab.
func (s *Sink) AppendRow(ctx context.Context, partition string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{values}}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, A1Range(partition), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		if missingTab(err) {
			return fmt.Errorf("append to %q: %w: %w", partition, model.ErrPartitionNotFound, err)
		}
		return fmt.Errorf("append to %q: %w", partition, err)
	}
	return nil
}

// A1Range returns the A:C column range of a tab, quoting the tab name.
func A1Range(partition string) string {
	return "'" + strings.ReplaceAll(partition, "'", "''") + "'!A:C"
}

// missingTab reports whether an append was rejected because the range names
// a tab that does not exist.
func missingTab(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(gerr.Message), "unable to parse range")
}

// alreadyExists reports whether an addSheet call lost a race with another writer.
func alreadyExists(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(gerr.Message), "already exists")
}
