package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/sheetstore"
)

// SpreadsheetService manages attached spreadsheets, the per-user active
// selection and primary-sheet row CRUD. The active selection lives only in
// process memory.
type SpreadsheetService struct {
	store        sheetstore.Store
	adminSheetID string

	mu     sync.Mutex
	active map[string]string // caller email -> spreadsheet id
}

func NewSpreadsheetService(store sheetstore.Store, adminSheetID string) *SpreadsheetService {
	return &SpreadsheetService{
		store:        store,
		adminSheetID: adminSheetID,
		active:       make(map[string]string),
	}
}

// Setup attaches a spreadsheet to a user: shares it with the service
// identity, records it in the registry sheet and seeds the Unique ID column.
// Duplicate registrations are rejected on a best-effort linear scan.
func (s *SpreadsheetService) Setup(ctx context.Context, req models.SpreadsheetSetupRequest) error {
	spreadsheetID := ExtractSpreadsheetID(req.SpreadsheetURL)
	if spreadsheetID == "" {
		return ErrInvalidSpreadsheetURL
	}

	if err := s.store.Share(ctx, spreadsheetID); err != nil {
		return err
	}

	if err := s.store.EnsureSheet(ctx, s.adminSheetID, sheetstore.RegistrySheet); err != nil {
		return err
	}
	existing, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.RegistrySheet)
	if err != nil {
		return err
	}
	for _, row := range existing {
		if len(row) >= 2 && row[0] == req.Email && row[1] == spreadsheetID {
			return ErrSpreadsheetRegistered
		}
	}

	if err := s.store.AppendRow(ctx, s.adminSheetID, sheetstore.RegistrySheet,
		[]string{req.Email, spreadsheetID, req.SpreadsheetName}); err != nil {
		return err
	}

	if err := s.initialize(ctx, spreadsheetID); err != nil {
		return err
	}
	slog.Info("spreadsheet attached", "email", req.Email, "spreadsheet_id", spreadsheetID)
	return nil
}

// List returns the spreadsheets attached by the given user.
func (s *SpreadsheetService) List(ctx context.Context, email string) ([]models.SpreadsheetRef, error) {
	rows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.RegistrySheet)
	if err != nil {
		return nil, err
	}
	refs := make([]models.SpreadsheetRef, 0)
	for _, row := range rows {
		if len(row) >= 3 && row[0] == email {
			refs = append(refs, models.SpreadsheetRef{ID: row[1], Name: row[2]})
		}
	}
	return refs, nil
}

// ActiveFor returns the caller's current spreadsheet selection.
func (s *SpreadsheetService) ActiveFor(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.active[email]
	return id, ok
}

// SetActive records the caller's selection and backfills the Unique ID
// column if the sheet predates it.
func (s *SpreadsheetService) SetActive(ctx context.Context, email, spreadsheetID string) error {
	if err := s.initialize(ctx, spreadsheetID); err != nil {
		return err
	}

	s.mu.Lock()
	s.active[email] = spreadsheetID
	s.mu.Unlock()

	slog.Info("active spreadsheet set", "email", email, "spreadsheet_id", spreadsheetID)
	return nil
}

// FetchRows returns every row of the caller's active sheet, header included.
func (s *SpreadsheetService) FetchRows(ctx context.Context, email string) ([][]string, error) {
	spreadsheetID, ok := s.ActiveFor(email)
	if !ok {
		return nil, ErrNoActiveSpreadsheet
	}
	return s.store.GetRows(ctx, spreadsheetID, sheetstore.PrimaryRange)
}

// AddRow appends a record with the next sequential unique id.
func (s *SpreadsheetService) AddRow(ctx context.Context, email string, row []string) error {
	spreadsheetID, ok := s.ActiveFor(email)
	if !ok {
		return ErrNoActiveSpreadsheet
	}

	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	rows, err := s.store.GetRows(ctx, spreadsheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	id := sheetstore.NextUniqueID(rows)
	return s.store.AppendRow(ctx, spreadsheetID, sheetstore.PrimaryRange,
		append([]string{strconv.Itoa(id)}, row...))
}

// UpdateRow overwrites one data row in place. RowIndex is the 1-based sheet
// row, so the header at row 1 is off limits.
func (s *SpreadsheetService) UpdateRow(ctx context.Context, email string, rowIndex int, row []string) error {
	spreadsheetID, ok := s.ActiveFor(email)
	if !ok {
		return ErrNoActiveSpreadsheet
	}
	if rowIndex < 2 {
		return ErrInvalidRowIndex
	}
	return s.store.UpdateRange(ctx, spreadsheetID,
		fmt.Sprintf("Sheet1!A%d", rowIndex), [][]string{row})
}

// initialize backfills a Unique ID column when no header names one,
// rewriting the whole sheet with sequential ids prepended.
func (s *SpreadsheetService) initialize(ctx context.Context, spreadsheetID string) error {
	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	headerRows, err := s.store.GetRows(ctx, spreadsheetID, sheetstore.HeaderRange)
	if err != nil {
		return err
	}
	if len(headerRows) > 0 && sheetstore.HasUniqueIDHeader(headerRows[0]) {
		return nil
	}

	rows, err := s.store.GetRows(ctx, spreadsheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return s.store.UpdateRange(ctx, spreadsheetID, "Sheet1!A1", [][]string{{"Unique ID"}})
	}

	updated := make([][]string, len(rows))
	for i, row := range rows {
		if i == 0 {
			updated[i] = append([]string{"Unique ID"}, row...)
			continue
		}
		updated[i] = append([]string{strconv.Itoa(i)}, row...)
	}
	return s.store.UpdateRange(ctx, spreadsheetID, sheetstore.PrimaryRange, updated)
}

// UniqueIDColumn locates the id column from the header row. Defaults to the
// first column when no header matches.
func UniqueIDColumn(headers []string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), "unique") {
			return i
		}
	}
	return 0
}
