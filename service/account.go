package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nishantd01/sheetdesk/auth"
	"github.com/nishantd01/sheetdesk/email"
	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/sheetstore"
)

// AccountService handles login and password recovery against rows already
// persisted in the sheets.
type AccountService struct {
	store        sheetstore.Store
	mailer       email.Sender
	jwt          *auth.JWTManager
	adminSheetID string
}

func NewAccountService(store sheetstore.Store, mailer email.Sender, jwt *auth.JWTManager, adminSheetID string) *AccountService {
	return &AccountService{store: store, mailer: mailer, jwt: jwt, adminSheetID: adminSheetID}
}

// Login checks email, security code and password and issues a session token.
// Users are located through the admin whose security code matches theirs.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	if req.IsAdmin {
		rows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.PrimaryRange)
		if err != nil {
			return "", err
		}
		idx := sheetstore.FindRowByEmail(rows, req.Email)
		if idx < 0 {
			return "", ErrUserNotFound
		}
		account := sheetstore.AccountFromRow(rows[idx], true)
		if account.SecurityCode != req.SecurityCode {
			return "", ErrInvalidSecurityCode
		}
		if !auth.CheckPassword(account.PasswordHash, req.Password) {
			return "", ErrInvalidCredentials
		}
		return s.issue(req.Email, true)
	}

	userSheetID, code, err := s.resolveAdminByCode(ctx, req.SecurityCode)
	if err != nil {
		return "", err
	}
	rows, err := s.store.GetRows(ctx, userSheetID, sheetstore.PrimaryRange)
	if err != nil {
		return "", err
	}
	idx := sheetstore.FindRowByEmail(rows, req.Email)
	if idx < 0 {
		return "", ErrInvalidCredentials
	}
	account := sheetstore.AccountFromRow(rows[idx], false)
	if account.SecurityCode != code {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		return "", ErrInvalidCredentials
	}
	return s.issue(req.Email, false)
}

// VerifyLogin is the code-assisted login path behind /api/verify-code with
// purpose=login.
func (s *AccountService) VerifyLogin(ctx context.Context, req models.VerifyCodeRequest) (string, error) {
	if req.IsAdmin {
		rows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.PrimaryRange)
		if err != nil {
			return "", err
		}
		idx := sheetstore.FindRowByEmail(rows, req.Email)
		if idx < 0 {
			return "", ErrInvalidSecurityCode
		}
		account := sheetstore.AccountFromRow(rows[idx], true)
		if account.SecurityCode != req.Code {
			return "", ErrInvalidSecurityCode
		}
		if !auth.CheckPassword(account.PasswordHash, req.Password) {
			return "", ErrInvalidCredentials
		}
		return s.issue(req.Email, true)
	}

	userSheetID, code, err := s.resolveAdminByCode(ctx, req.Code)
	if err != nil {
		return "", err
	}
	rows, err := s.store.GetRows(ctx, userSheetID, sheetstore.PrimaryRange)
	if err != nil {
		return "", err
	}
	idx := sheetstore.FindRowByEmail(rows, req.Email)
	if idx < 0 {
		return "", ErrInvalidSecurityCode
	}
	account := sheetstore.AccountFromRow(rows[idx], false)
	if account.SecurityCode != code {
		return "", ErrInvalidSecurityCode
	}
	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		return "", ErrInvalidCredentials
	}
	return s.issue(req.Email, false)
}

// ForgotPassword writes a fresh reset code into the account's security-code
// cell and emails it. The code column differs between the admin and user
// layouts.
func (s *AccountService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	sheetID, err := s.sheetFor(ctx, req.IsAdmin)
	if err != nil {
		return err
	}

	rows, err := s.store.GetRows(ctx, sheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	idx := sheetstore.FindRowByEmail(rows, req.Email)
	if idx < 0 {
		return ErrUserNotFound
	}

	resetCode := auth.NewSecurityCode()
	codeCol := "I"
	if req.IsAdmin {
		codeCol = "J"
	}
	cellRange := fmt.Sprintf("Sheet1!%s%d", codeCol, idx+1)
	if err := s.store.UpdateRange(ctx, sheetID, cellRange, [][]string{{resetCode}}); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetCode(req.Email, resetCode); err != nil {
		return err
	}
	slog.Info("password reset code issued", "email", req.Email, "admin", req.IsAdmin)
	return nil
}

// ResetPassword overwrites the password cell after the emailed code checks
// out.
func (s *AccountService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	sheetID, err := s.sheetFor(ctx, req.IsAdmin)
	if err != nil {
		return err
	}

	rows, err := s.store.GetRows(ctx, sheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	idx := sheetstore.FindRowByEmail(rows, req.Email)
	if idx < 0 {
		return ErrInvalidSecurityCode
	}
	account := sheetstore.AccountFromRow(rows[idx], req.IsAdmin)
	if account.SecurityCode != req.Code {
		return ErrInvalidSecurityCode
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	passwordCol := "H"
	if req.IsAdmin {
		passwordCol = "I"
	}
	cellRange := fmt.Sprintf("Sheet1!%s%d", passwordCol, idx+1)
	if err := s.store.UpdateRange(ctx, sheetID, cellRange, [][]string{{hash}}); err != nil {
		return err
	}

	slog.Info("password reset", "email", req.Email, "admin", req.IsAdmin)
	return nil
}

func (s *AccountService) issue(email string, isAdmin bool) (string, error) {
	token, err := s.jwt.Generate(email, isAdmin)
	if err != nil {
		return "", err
	}
	slog.Info("login successful", "email", email, "admin", isAdmin)
	return token, nil
}

// resolveAdminByCode finds the admin row whose security code matches and
// returns its bound spreadsheet id and the code. This linkage breaks
// silently if the admin has since reset their code.
func (s *AccountService) resolveAdminByCode(ctx context.Context, code string) (string, string, error) {
	rows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.PrimaryRange)
	if err != nil {
		return "", "", err
	}
	for _, row := range rows {
		if len(row) > sheetstore.ColAdminCode && row[sheetstore.ColAdminCode] == code {
			return row[sheetstore.ColAdminSpreadsheetID], code, nil
		}
	}
	return "", "", ErrInvalidSecurityCode
}

// sheetFor picks the admin sheet or, for users, the most recently registered
// admin's user sheet.
func (s *AccountService) sheetFor(ctx context.Context, isAdmin bool) (string, error) {
	if isAdmin {
		return s.adminSheetID, nil
	}
	rows, err := s.store.GetRows(ctx, s.adminSheetID, sheetstore.PrimaryRange)
	if err != nil {
		return "", err
	}
	if len(rows) < 2 {
		return "", ErrNoAdminRegistered
	}
	last := rows[len(rows)-1]
	if len(last) <= sheetstore.ColAdminSpreadsheetID || last[sheetstore.ColAdminSpreadsheetID] == "" {
		return "", ErrNoAdminRegistered
	}
	return last[sheetstore.ColAdminSpreadsheetID], nil
}
