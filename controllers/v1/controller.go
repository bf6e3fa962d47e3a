// Package v1 holds the gin handlers for the /api route group. Handlers bind
// the request, call one service method and translate errors into the
// 400/401/404/500 taxonomy; upstream provider messages pass through
// verbatim.
package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/service"
	"github.com/nishantd01/sheetdesk/sheetstore"
	"github.com/nishantd01/sheetdesk/whatsapp"
)

func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidSpreadsheetURL),
		errors.Is(err, service.ErrNoPendingRegistration),
		errors.Is(err, service.ErrNoActiveSpreadsheet),
		errors.Is(err, service.ErrSpreadsheetRegistered),
		errors.Is(err, service.ErrInvalidRowIndex),
		errors.Is(err, service.ErrNoValidRecipients):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidSecurityCode),
		errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrNoAdminRegistered),
		errors.Is(err, sheetstore.ErrRangeNotFound),
		errors.Is(err, whatsapp.ErrTemplateNotFound):
		status = http.StatusNotFound
	}
	ctx.JSON(status, gin.H{"success": false, "message": err.Error()})
}

func respondBadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}
