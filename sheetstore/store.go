// Package sheetstore adapts remote Google Spreadsheets into a row-oriented
// record store. Every operation is one or more uncoordinated round trips to
// the Sheets API; there is no retry and no cross-call transaction. Callers
// performing read-modify-write sequences serialize on Lock.
package sheetstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Store is the row-oriented interface the service layer depends on.
type Store interface {
	// GetRows returns every populated row of the range as strings. An empty
	// range yields an empty slice, never nil.
	GetRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)

	// AppendRow appends one row after the last populated row of the range.
	// No uniqueness checks are performed here.
	AppendRow(ctx context.Context, spreadsheetID, rangeName string, row []string) error

	// UpdateRange overwrites the addressed cell block. Used both for single
	// cells and for whole-sheet rewrites.
	UpdateRange(ctx context.Context, spreadsheetID, rangeName string, rows [][]string) error

	// ClearRange blanks the addressed cell block.
	ClearRange(ctx context.Context, spreadsheetID, rangeName string) error

	// EnsureSheet creates the named tab if the spreadsheet lacks it.
	EnsureSheet(ctx context.Context, spreadsheetID, title string) error

	// Share grants the service identity writer access to the spreadsheet.
	Share(ctx context.Context, spreadsheetID string) error

	// Lock acquires a per-spreadsheet mutex and returns its release func.
	Lock(spreadsheetID string) func()
}

// GoogleStore implements Store against the Sheets and Drive v3 APIs using a
// service account.
type GoogleStore struct {
	sheets              *sheets.Service
	drive               *drive.Service
	serviceAccountEmail string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a GoogleStore from a service-account credentials file. The
// file's client_email doubles as the identity spreadsheets are shared with.
func New(ctx context.Context, credentialsFile string) (*GoogleStore, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %w", err)
	}
	client := cfg.Client(ctx)

	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}

	return &GoogleStore{
		sheets:              sheetsSvc,
		drive:               driveSvc,
		serviceAccountEmail: cfg.Email,
		locks:               make(map[string]*sync.Mutex),
	}, nil
}

func (s *GoogleStore) GetRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := s.sheets.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get "+readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *GoogleStore) AppendRow(ctx context.Context, spreadsheetID, rangeName string, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaceRow(row)}}
	_, err := s.sheets.Spreadsheets.Values.Append(spreadsheetID, rangeName, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("append "+rangeName, err)
	}
	return nil
}

func (s *GoogleStore) UpdateRange(ctx context.Context, spreadsheetID, rangeName string, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toInterfaceRow(row)
	}
	vr := &sheets.ValueRange{Range: rangeName, Values: values}
	_, err := s.sheets.Spreadsheets.Values.Update(spreadsheetID, rangeName, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("update "+rangeName, err)
	}
	return nil
}

func (s *GoogleStore) ClearRange(ctx context.Context, spreadsheetID, rangeName string) error {
	_, err := s.sheets.Spreadsheets.Values.Clear(spreadsheetID, rangeName, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("clear "+rangeName, err)
	}
	return nil
}

func (s *GoogleStore) EnsureSheet(ctx context.Context, spreadsheetID, title string) error {
	spreadsheet, err := s.sheets.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("get spreadsheet", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties.Title == title {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			},
		},
	}
	if _, err := s.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return wrapAPIError("add sheet "+title, err)
	}
	return nil
}

func (s *GoogleStore) Share(ctx context.Context, spreadsheetID string) error {
	perm := &drive.Permission{
		Role:         "writer",
		Type:         "user",
		EmailAddress: s.serviceAccountEmail,
	}
	_, err := s.drive.Permissions.Create(spreadsheetID, perm).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShareFailed, err)
	}
	return nil
}

// Lock serializes read-modify-write sequences against one spreadsheet.
// Concurrent writers to different spreadsheets do not contend.
func (s *GoogleStore) Lock(spreadsheetID string) func() {
	s.mu.Lock()
	m, ok := s.locks[spreadsheetID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[spreadsheetID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, cell := range row {
		out[i] = cell
	}
	return out
}
