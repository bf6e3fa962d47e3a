package sheetstore

import (
	"strconv"
	"strings"

	"github.com/nishantd01/sheetdesk/models"
)

// Sheet and range names. The primary tab of every spreadsheet is Sheet1;
// groups and the attached-spreadsheet registry live in their own tabs.
const (
	PrimaryRange  = "Sheet1"
	HeaderRange   = "Sheet1!1:1"
	GroupsSheet   = "Groups"
	GroupsRange   = "Groups!A:D"
	RegistrySheet = "Spreadsheet IDs"
)

// Column positions within Sheet1. Admin rows carry a Spreadsheet ID column
// that user rows lack, which shifts the password and code columns.
const (
	ColUniqueID   = 0
	ColFirstName  = 1
	ColMiddleName = 2
	ColSurname    = 3
	ColMobile     = 4
	ColEmail      = 5
	ColGender     = 6

	ColAdminSpreadsheetID = 7
	ColAdminPassword      = 8
	ColAdminCode          = 9

	ColUserPassword = 7
	ColUserCode     = 8
)

// Group sheet columns.
const (
	ColGroupID          = 0
	ColGroupName        = 1
	ColGroupDescription = 2
	ColGroupMembers     = 3
)

var (
	AdminHeaders = []string{"Unique ID", "First Name", "Middle Name", "Surname", "Mobile", "Email", "Gender", "Spreadsheet ID", "Password", "Security Code"}
	UserHeaders  = []string{"Unique ID", "First Name", "Middle Name", "Surname", "Mobile", "Email", "Gender", "Password", "Security Code"}
	GroupHeaders = []string{"Group ID", "Group Name", "Description", "Members"}
)

// HasUniqueIDHeader reports whether any header cell names the id column.
// Matching is by case-insensitive substring, tolerating sheets labeled
// "Unique ID", "UniqueId" or similar.
func HasUniqueIDHeader(headers []string) bool {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), "unique") {
			return true
		}
	}
	return false
}

// NextUniqueID scans column A for the maximum numeric id and returns max+1.
// Non-numeric cells (the header) are skipped; an empty sheet yields 1.
//
// This is read-then-compute with no reservation: two concurrent registrants
// can observe the same maximum.
func NextUniqueID(rows [][]string) int {
	max := 0
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if id, err := strconv.Atoi(strings.TrimSpace(row[0])); err == nil && id > max {
			max = id
		}
	}
	return max + 1
}

// FindRowByEmail returns the index of the first row whose email column
// matches, or -1.
func FindRowByEmail(rows [][]string, email string) int {
	for i, row := range rows {
		if cell(row, ColEmail) == email {
			return i
		}
	}
	return -1
}

// AccountToRow lays out an account in sheet column order.
func AccountToRow(a models.Account, isAdmin bool) []string {
	row := []string{
		strconv.Itoa(a.UniqueID),
		a.FirstName,
		a.MiddleName,
		a.Surname,
		a.Mobile,
		a.Email,
		a.Gender,
	}
	if isAdmin {
		row = append(row, a.SpreadsheetID)
	}
	return append(row, a.PasswordHash, a.SecurityCode)
}

// AccountFromRow parses a sheet row back into an account. Short rows yield
// zero values for the missing columns.
func AccountFromRow(row []string, isAdmin bool) models.Account {
	a := models.Account{
		FirstName:  cell(row, ColFirstName),
		MiddleName: cell(row, ColMiddleName),
		Surname:    cell(row, ColSurname),
		Mobile:     cell(row, ColMobile),
		Email:      cell(row, ColEmail),
		Gender:     cell(row, ColGender),
	}
	a.UniqueID, _ = strconv.Atoi(cell(row, ColUniqueID))
	if isAdmin {
		a.SpreadsheetID = cell(row, ColAdminSpreadsheetID)
		a.PasswordHash = cell(row, ColAdminPassword)
		a.SecurityCode = cell(row, ColAdminCode)
	} else {
		a.PasswordHash = cell(row, ColUserPassword)
		a.SecurityCode = cell(row, ColUserCode)
	}
	return a
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
