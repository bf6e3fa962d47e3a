package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nishantd01/sheetdesk/models"
)

func TestSpreadsheetSetupAndList(t *testing.T) {
	store := newFakeStore()
	store.seed("sheet-a", "Sheet1", [][]string{{"Unique ID", "Name"}, {"1", "Asha"}})
	svc := NewSpreadsheetService(store, testAdminSheet)
	ctx := context.Background()

	req := models.SpreadsheetSetupRequest{
		Email:           "asha@example.com",
		SpreadsheetURL:  "https://docs.google.com/spreadsheets/d/sheet-a/edit",
		SpreadsheetName: "Event RSVPs",
	}
	if err := svc.Setup(ctx, req); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !store.shared["sheet-a"] {
		t.Error("spreadsheet was not shared")
	}

	if err := svc.Setup(ctx, req); !errors.Is(err, ErrSpreadsheetRegistered) {
		t.Fatalf("duplicate setup: got %v, want ErrSpreadsheetRegistered", err)
	}

	refs, err := svc.List(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "sheet-a" || refs[0].Name != "Event RSVPs" {
		t.Fatalf("List = %+v", refs)
	}

	refs, err = svc.List(ctx, "other@example.com")
	if err != nil {
		t.Fatalf("List other: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("other user sees %d spreadsheets, want 0", len(refs))
	}
}

func TestSetupRejectsInvalidURL(t *testing.T) {
	svc := NewSpreadsheetService(newFakeStore(), testAdminSheet)

	err := svc.Setup(context.Background(), models.SpreadsheetSetupRequest{
		Email:          "asha@example.com",
		SpreadsheetURL: "https://example.com/whatever",
	})
	if !errors.Is(err, ErrInvalidSpreadsheetURL) {
		t.Fatalf("got %v, want ErrInvalidSpreadsheetURL", err)
	}
}

func TestSetActiveBackfillsUniqueIDs(t *testing.T) {
	store := newFakeStore()
	store.seed("legacy", "Sheet1", [][]string{
		{"Name", "Email"},
		{"Asha", "asha@example.com"},
		{"Ravi", "ravi@example.com"},
	})
	svc := NewSpreadsheetService(store, testAdminSheet)
	ctx := context.Background()

	if err := svc.SetActive(ctx, "asha@example.com", "legacy"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	rows := store.rows("legacy", "Sheet1")
	if rows[0][0] != "Unique ID" {
		t.Fatalf("header row = %v, want Unique ID prepended", rows[0])
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Fatalf("data rows = %v, %v, want sequential ids prepended", rows[1], rows[2])
	}
	if rows[1][1] != "Asha" {
		t.Errorf("original columns shifted incorrectly: %v", rows[1])
	}

	id, ok := svc.ActiveFor("asha@example.com")
	if !ok || id != "legacy" {
		t.Fatalf("ActiveFor = %q, %v", id, ok)
	}
}

func TestSetActiveKeepsExistingIDs(t *testing.T) {
	store := newFakeStore()
	seeded := [][]string{
		{"Unique ID", "Name"},
		{"7", "Asha"},
	}
	store.seed("ready", "Sheet1", seeded)
	svc := NewSpreadsheetService(store, testAdminSheet)

	if err := svc.SetActive(context.Background(), "asha@example.com", "ready"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	rows := store.rows("ready", "Sheet1")
	if len(rows) != 2 || rows[1][0] != "7" {
		t.Fatalf("sheet was rewritten despite existing id column: %v", rows)
	}
}

func TestAddRowAssignsNextID(t *testing.T) {
	store := newFakeStore()
	store.seed("active", "Sheet1", [][]string{
		{"Unique ID", "Name"},
		{"1", "Asha"},
		{"2", "Ravi"},
	})
	svc := NewSpreadsheetService(store, testAdminSheet)
	ctx := context.Background()

	if err := svc.SetActive(ctx, "asha@example.com", "active"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := svc.AddRow(ctx, "asha@example.com", []string{"Meera"}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}

	rows := store.rows("active", "Sheet1")
	last := rows[len(rows)-1]
	if last[0] != "3" || last[1] != "Meera" {
		t.Fatalf("appended row = %v, want id 3", last)
	}
}

func TestUpdateRowBounds(t *testing.T) {
	store := newFakeStore()
	store.seed("active", "Sheet1", [][]string{
		{"Unique ID", "Name"},
		{"1", "Asha"},
	})
	svc := NewSpreadsheetService(store, testAdminSheet)
	ctx := context.Background()

	if err := svc.SetActive(ctx, "asha@example.com", "active"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	// Row 1 is the header and may not be overwritten.
	err := svc.UpdateRow(ctx, "asha@example.com", 1, []string{"x", "y"})
	if !errors.Is(err, ErrInvalidRowIndex) {
		t.Fatalf("got %v, want ErrInvalidRowIndex", err)
	}

	if err := svc.UpdateRow(ctx, "asha@example.com", 2, []string{"1", "Asha Rao"}); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if got := store.rows("active", "Sheet1")[1][1]; got != "Asha Rao" {
		t.Fatalf("updated cell = %q", got)
	}
}

func TestOperationsRequireActiveSpreadsheet(t *testing.T) {
	svc := NewSpreadsheetService(newFakeStore(), testAdminSheet)
	ctx := context.Background()

	if _, err := svc.FetchRows(ctx, "nobody@example.com"); !errors.Is(err, ErrNoActiveSpreadsheet) {
		t.Fatalf("FetchRows: got %v, want ErrNoActiveSpreadsheet", err)
	}
	if err := svc.AddRow(ctx, "nobody@example.com", []string{"x"}); !errors.Is(err, ErrNoActiveSpreadsheet) {
		t.Fatalf("AddRow: got %v, want ErrNoActiveSpreadsheet", err)
	}
	if err := svc.UpdateRow(ctx, "nobody@example.com", 2, []string{"x"}); !errors.Is(err, ErrNoActiveSpreadsheet) {
		t.Fatalf("UpdateRow: got %v, want ErrNoActiveSpreadsheet", err)
	}
}
