package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/middleware"
	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/service"
)

type SpreadsheetController struct {
	sheets *service.SpreadsheetService
	groups *service.GroupService
}

func NewSpreadsheetController(sheets *service.SpreadsheetService, groups *service.GroupService) *SpreadsheetController {
	return &SpreadsheetController{sheets: sheets, groups: groups}
}

// POST /api/spreadsheet-setup
func (ctl *SpreadsheetController) Setup(ctx *gin.Context) {
	var req models.SpreadsheetSetupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.sheets.Setup(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Spreadsheet setup successful."})
}

// GET /api/spreadsheet-list
func (ctl *SpreadsheetController) List(ctx *gin.Context) {
	email := ctx.Query("email")
	if email == "" {
		email = middleware.CallerEmail(ctx)
	}

	refs, err := ctl.sheets.List(ctx.Request.Context(), email)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "spreadsheetList": refs})
}

// GET /api/get-active-spreadsheet
func (ctl *SpreadsheetController) GetActive(ctx *gin.Context) {
	id, _ := ctl.sheets.ActiveFor(middleware.CallerEmail(ctx))
	ctx.JSON(http.StatusOK, gin.H{"success": true, "activeSpreadsheetId": id})
}

// POST /api/set-active-spreadsheet
func (ctl *SpreadsheetController) SetActive(ctx *gin.Context) {
	var req models.SetActiveSpreadsheetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, "Spreadsheet ID is required")
		return
	}

	if err := ctl.sheets.SetActive(ctx.Request.Context(), middleware.CallerEmail(ctx), req.SpreadsheetID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Active spreadsheet set successfully"})
}

// GET /api/fetch-registrations
func (ctl *SpreadsheetController) FetchRegistrations(ctx *gin.Context) {
	rows, err := ctl.sheets.FetchRows(ctx.Request.Context(), middleware.CallerEmail(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rows)
}

// POST /api/add-user
func (ctl *SpreadsheetController) AddUser(ctx *gin.Context) {
	var req models.AddUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.sheets.AddRow(ctx.Request.Context(), middleware.CallerEmail(ctx), req.Row); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "User added successfully"})
}

// PUT /api/update-row
func (ctl *SpreadsheetController) UpdateRow(ctx *gin.Context) {
	var req models.UpdateRowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.sheets.UpdateRow(ctx.Request.Context(), middleware.CallerEmail(ctx), req.RowIndex, req.Row); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Row updated successfully"})
}

// DELETE /api/delete-users
func (ctl *SpreadsheetController) DeleteUsers(ctx *gin.Context) {
	var req models.DeleteUsersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.groups.DeleteUsers(ctx.Request.Context(), middleware.CallerEmail(ctx), req.UserIDs); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Users deleted successfully"})
}
