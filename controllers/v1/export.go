package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/middleware"
	"github.com/nishantd01/sheetdesk/service"
)

type ExportController struct {
	exports *service.ExportService
}

func NewExportController(exports *service.ExportService) *ExportController {
	return &ExportController{exports: exports}
}

// GET /api/export-csv
func (ctl *ExportController) CSV(ctx *gin.Context) {
	data, err := ctl.exports.CSV(ctx.Request.Context(), middleware.CallerEmail(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", "attachment; filename=export.csv")
	ctx.Data(http.StatusOK, "text/csv", data)
}

// GET /api/export-excel
func (ctl *ExportController) Excel(ctx *gin.Context) {
	data, err := ctl.exports.Excel(ctx.Request.Context(), middleware.CallerEmail(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", "attachment; filename=export.xlsx")
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GET /api/export-pdf
func (ctl *ExportController) PDF(ctx *gin.Context) {
	data, err := ctl.exports.PDF(ctx.Request.Context(), middleware.CallerEmail(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", "attachment; filename=export.pdf")
	ctx.Data(http.StatusOK, "application/pdf", data)
}
