// Package models holds the domain types persisted as spreadsheet rows and
// the JSON payloads exchanged with the frontend.
package models

// Account is one row of an admin sheet or of an admin-owned user sheet.
// Admin rows carry SpreadsheetID; user rows do not.
type Account struct {
	UniqueID      int    `json:"uniqueId"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	Surname       string `json:"surname"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
	Gender        string `json:"gender"`
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
	PasswordHash  string `json:"-"`
	SecurityCode  string `json:"-"`
}

// PendingRegistration is the unverified draft kept in process memory between
// the register and verify-code calls. It is lost on restart.
type PendingRegistration struct {
	Account
	IsAdmin bool

	// For user registrations: the admin sheet resolved at submit time.
	TargetSpreadsheetID string
}

// Group is one row of the Groups sheet. Members holds user Unique IDs.
type Group struct {
	ID          string   `json:"groupId"`
	Name        string   `json:"groupName"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// GroupMember is a member id resolved against the primary sheet.
type GroupMember struct {
	UniqueID  string `json:"uniqueId"`
	FirstName string `json:"firstName"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
}

// ResolvedGroup is the fetch-groups response shape.
type ResolvedGroup struct {
	ID          string        `json:"groupId"`
	Name        string        `json:"groupName"`
	Description string        `json:"description"`
	MemberCount int           `json:"memberCount"`
	Members     []GroupMember `json:"members"`
}

// SpreadsheetRef is one attached spreadsheet from the registry sheet.
type SpreadsheetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Recipient is one entry of the send-whatsapp recipients array. Data carries
// per-recipient template parameters keyed paramN.
type Recipient struct {
	Phone string            `json:"phone"`
	Name  string            `json:"name,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// SendResult is the per-recipient outcome of a dispatch batch.
type SendResult struct {
	Phone     string `json:"phone"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Request payloads.

type RegisterAdminRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	MiddleName     string `json:"middleName"`
	Surname        string `json:"surname" binding:"required"`
	Mobile         string `json:"mobile" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Gender         string `json:"gender" binding:"required"`
	SpreadsheetURL string `json:"spreadsheetUrl" binding:"required"`
	Password       string `json:"password" binding:"required"`
}

type RegisterUserRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	MiddleName string `json:"middleName"`
	Surname    string `json:"surname" binding:"required"`
	Mobile     string `json:"mobile" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Gender     string `json:"gender" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type VerifyCodeRequest struct {
	Code     string `json:"code" binding:"required"`
	Email    string `json:"email" binding:"required"`
	IsAdmin  bool   `json:"isAdmin"`
	Purpose  string `json:"purpose" binding:"required"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	IsAdmin      bool   `json:"isAdmin"`
	SecurityCode string `json:"securityCode" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email   string `json:"email" binding:"required"`
	IsAdmin bool   `json:"isAdmin"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
	IsAdmin     bool   `json:"isAdmin"`
}

type SpreadsheetSetupRequest struct {
	Email           string `json:"email" binding:"required"`
	SpreadsheetURL  string `json:"spreadsheetUrl" binding:"required"`
	SpreadsheetName string `json:"spreadsheetName" binding:"required"`
}

type SetActiveSpreadsheetRequest struct {
	SpreadsheetID string `json:"spreadsheetId" binding:"required"`
}

type AddUserRequest struct {
	Row []string `json:"row" binding:"required"`
}

type UpdateRowRequest struct {
	// RowIndex is 1-based and includes the header row, matching what the
	// dashboard shows.
	RowIndex int      `json:"rowIndex" binding:"required"`
	Row      []string `json:"row" binding:"required"`
}

type DeleteUsersRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

// SelectedField is one dashboard row selection used when creating a group.
type SelectedField struct {
	UniqueID string `json:"uniqueId"`
}

type CreateGroupRequest struct {
	GroupName      string          `json:"groupName" binding:"required"`
	Description    string          `json:"description"`
	SelectedFields []SelectedField `json:"selectedFields" binding:"required"`
}

type CombineGroupsRequest struct {
	GroupIDs     []string `json:"groupIds" binding:"required"`
	NewGroupName string   `json:"newGroupName" binding:"required"`
	Description  string   `json:"description"`
}

type DeleteGroupsRequest struct {
	GroupIDs []string `json:"groupIds" binding:"required"`
}

type MembershipRequest struct {
	UserIDs  []string `json:"userIds" binding:"required"`
	GroupIDs []string `json:"groupIds" binding:"required"`
}
