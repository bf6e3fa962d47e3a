package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/service"
	"github.com/nishantd01/sheetdesk/whatsapp"
)

type WhatsAppController struct {
	messaging *service.MessagingService
	client    *whatsapp.Client
}

func NewWhatsAppController(messaging *service.MessagingService, client *whatsapp.Client) *WhatsAppController {
	return &WhatsAppController{messaging: messaging, client: client}
}

// POST /api/send-whatsapp (multipart: header, message, recipients, template, files)
func (ctl *WhatsAppController) Send(ctx *gin.Context) {
	var def whatsapp.TemplateDefinition
	if err := json.Unmarshal([]byte(ctx.PostForm("template")), &def); err != nil {
		respondBadRequest(ctx, "Invalid template format")
		return
	}
	if def.Template.Name == "" || def.Template.Components == nil {
		respondBadRequest(ctx, "Invalid template structure")
		return
	}

	var recipients []models.Recipient
	if err := json.Unmarshal([]byte(ctx.PostForm("recipients")), &recipients); err != nil {
		respondBadRequest(ctx, "Invalid recipients format. Expected a JSON array.")
		return
	}

	var attachments []service.Attachment
	if form, err := ctx.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				respondError(ctx, err)
				return
			}
			defer f.Close()
			attachments = append(attachments, service.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Reader:      f,
			})
		}
	}

	results, err := ctl.messaging.Dispatch(ctx.Request.Context(), ctx.PostForm("message"), recipients, def, attachments)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "WhatsApp dispatch complete",
		"results": results,
	})
}

// GET /api/get-all-templates
func (ctl *WhatsAppController) GetAllTemplates(ctx *gin.Context) {
	templates, err := ctl.client.ListTemplates(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"templates": templates})
}

// DELETE /api/delete-template/:template_id/:template_name
func (ctl *WhatsAppController) DeleteTemplate(ctx *gin.Context) {
	err := ctl.client.DeleteTemplate(ctx.Request.Context(), ctx.Param("template_id"), ctx.Param("template_name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Template deleted successfully"})
}
