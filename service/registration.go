// Package service implements the portal's business logic on top of the
// sheetstore adapter. Every multi-step mutation is a sequence of remote
// round trips; per-spreadsheet locks serialize writers within this process
// but nothing coordinates across processes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/nishantd01/sheetdesk/auth"
	"github.com/nishantd01/sheetdesk/email"
	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/sheetstore"
)

var (
	ErrInvalidSpreadsheetURL  = errors.New("invalid Google Spreadsheet URL")
	ErrNoPendingRegistration  = errors.New("no pending registration found for this email")
	ErrInvalidSecurityCode    = errors.New("invalid security code")
	ErrNoAdminRegistered      = errors.New("no admin registered yet")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
	ErrNoActiveSpreadsheet    = errors.New("no active spreadsheet set")
	ErrSpreadsheetRegistered  = errors.New("spreadsheet already registered")
	ErrInvalidRowIndex        = errors.New("row index out of range")
	ErrGroupNotFound          = errors.New("group not found")
	ErrNoValidRecipients      = errors.New("no valid recipients found")
)

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSpreadsheetID pulls the document id out of a Sheets URL. Returns ""
// when the URL lacks the /spreadsheets/d/<id> segment.
func ExtractSpreadsheetID(url string) string {
	m := spreadsheetURLPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// RegistrationService drives the register→verify state machine. Drafts live
// only in the pending map: a restart abandons every in-flight registration,
// and a re-submit for the same email overwrites the earlier draft.
type RegistrationService struct {
	store        sheetstore.Store
	mailer       email.Sender
	adminSheetID string

	mu      sync.Mutex
	pending map[string]*models.PendingRegistration
}

func NewRegistrationService(store sheetstore.Store, mailer email.Sender, adminSheetID string) *RegistrationService {
	return &RegistrationService{
		store:        store,
		mailer:       mailer,
		adminSheetID: adminSheetID,
		pending:      make(map[string]*models.PendingRegistration),
	}
}

// RegisterAdmin validates the spreadsheet URL, shares the target sheet with
// the service identity, stores the draft and emails a security code.
func (s *RegistrationService) RegisterAdmin(ctx context.Context, req models.RegisterAdminRequest) error {
	spreadsheetID := ExtractSpreadsheetID(req.SpreadsheetURL)
	if spreadsheetID == "" {
		return ErrInvalidSpreadsheetURL
	}

	if err := s.store.Share(ctx, spreadsheetID); err != nil {
		return err
	}
	if err := s.ensureHeaders(ctx, s.adminSheetID, true); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code := auth.NewSecurityCode()

	draft := &models.PendingRegistration{
		Account: models.Account{
			FirstName:     req.FirstName,
			MiddleName:    req.MiddleName,
			Surname:       req.Surname,
			Mobile:        req.Mobile,
			Email:         req.Email,
			Gender:        req.Gender,
			SpreadsheetID: spreadsheetID,
			PasswordHash:  hash,
			SecurityCode:  code,
		},
		IsAdmin: true,
	}

	s.mu.Lock()
	s.pending[req.Email] = draft
	s.mu.Unlock()

	if err := s.mailer.SendSecurityCode(req.Email, code, true); err != nil {
		return err
	}
	slog.Info("admin registration pending", "email", req.Email, "spreadsheet_id", spreadsheetID)
	return nil
}

// RegisterUser resolves the target user sheet from the most recently
// registered admin, stores the draft and emails a security code. The final
// sheet is re-resolved at verification time from the submitted code.
func (s *RegistrationService) RegisterUser(ctx context.Context, req models.RegisterUserRequest) error {
	adminRows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	if len(adminRows) < 2 {
		return ErrNoAdminRegistered
	}
	last := adminRows[len(adminRows)-1]
	userSheetID := ""
	if len(last) > sheetstore.ColAdminSpreadsheetID {
		userSheetID = last[sheetstore.ColAdminSpreadsheetID]
	}
	if userSheetID == "" {
		return ErrNoAdminRegistered
	}

	if err := s.ensureHeaders(ctx, userSheetID, false); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code := auth.NewSecurityCode()

	draft := &models.PendingRegistration{
		Account: models.Account{
			FirstName:    req.FirstName,
			MiddleName:   req.MiddleName,
			Surname:      req.Surname,
			Mobile:       req.Mobile,
			Email:        req.Email,
			Gender:       req.Gender,
			PasswordHash: hash,
			SecurityCode: code,
		},
		TargetSpreadsheetID: userSheetID,
	}

	s.mu.Lock()
	s.pending[req.Email] = draft
	s.mu.Unlock()

	if err := s.mailer.SendSecurityCode(req.Email, code, false); err != nil {
		return err
	}
	slog.Info("user registration pending", "email", req.Email)
	return nil
}

// VerifyRegistration completes a pending registration. A code mismatch
// leaves the draft in place so the caller can retry; a match appends the row
// and deletes the draft, making the code non-replayable here.
func (s *RegistrationService) VerifyRegistration(ctx context.Context, email, code string, isAdmin bool) error {
	s.mu.Lock()
	draft, ok := s.pending[email]
	s.mu.Unlock()
	if !ok {
		return ErrNoPendingRegistration
	}

	if isAdmin {
		if draft.SecurityCode != code {
			return ErrInvalidSecurityCode
		}
		return s.appendVerified(ctx, email, draft, s.adminSheetID, true, draft.SecurityCode)
	}

	// Users are assigned to whichever admin's security code matches the
	// submitted one, scanned at verification time.
	adminRows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	assignedSheet, assignedCode := "", ""
	for _, row := range adminRows[min(1, len(adminRows)):] {
		if len(row) > sheetstore.ColAdminCode && row[sheetstore.ColAdminCode] == code {
			assignedSheet = row[sheetstore.ColAdminSpreadsheetID]
			assignedCode = row[sheetstore.ColAdminCode]
			break
		}
	}
	if assignedSheet == "" {
		return ErrInvalidSecurityCode
	}
	return s.appendVerified(ctx, email, draft, assignedSheet, false, assignedCode)
}

func (s *RegistrationService) appendVerified(ctx context.Context, email string, draft *models.PendingRegistration, sheetID string, isAdmin bool, storedCode string) error {
	unlock := s.store.Lock(sheetID)
	defer unlock()

	rows, err := s.store.GetRows(ctx, sheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}

	account := draft.Account
	account.UniqueID = sheetstore.NextUniqueID(rows)
	account.SecurityCode = storedCode

	if err := s.store.AppendRow(ctx, sheetID, sheetstore.PrimaryRange, sheetstore.AccountToRow(account, isAdmin)); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.pending, email)
	s.mu.Unlock()

	slog.Info("registration verified", "email", email, "admin", isAdmin, "unique_id", account.UniqueID)
	return nil
}

// ensureHeaders idempotently seeds the header row of an uninitialized sheet.
func (s *RegistrationService) ensureHeaders(ctx context.Context, sheetID string, isAdmin bool) error {
	rows, err := s.store.GetRows(ctx, sheetID, sheetstore.PrimaryRange)
	if err != nil && !errors.Is(err, sheetstore.ErrRangeNotFound) {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	headers := sheetstore.UserHeaders
	if isAdmin {
		headers = sheetstore.AdminHeaders
	}
	return s.store.UpdateRange(ctx, sheetID, "Sheet1!A1", [][]string{headers})
}
