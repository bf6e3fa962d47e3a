package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nishantd01/sheetdesk/auth"
	"github.com/nishantd01/sheetdesk/config"
	v1 "github.com/nishantd01/sheetdesk/controllers/v1"
	"github.com/nishantd01/sheetdesk/email"
	"github.com/nishantd01/sheetdesk/logging"
	"github.com/nishantd01/sheetdesk/media"
	"github.com/nishantd01/sheetdesk/middleware"
	"github.com/nishantd01/sheetdesk/service"
	"github.com/nishantd01/sheetdesk/sheetstore"
	"github.com/nishantd01/sheetdesk/whatsapp"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sheetstore.New(context.Background(), cfg.GoogleCredentialsFile)
	if err != nil {
		slog.Error("failed to initialize sheet store", "error", err)
		os.Exit(1)
	}

	mailer := email.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)

	uploader, err := media.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		slog.Error("failed to initialize media uploader", "error", err)
		os.Exit(1)
	}
	waClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken, cfg.BusinessAccountID)

	registrations := service.NewRegistrationService(store, mailer, cfg.AdminSheetID)
	accounts := service.NewAccountService(store, mailer, jwtManager, cfg.AdminSheetID)
	spreadsheets := service.NewSpreadsheetService(store, cfg.AdminSheetID)
	groups := service.NewGroupService(store, spreadsheets)
	exports := service.NewExportService(spreadsheets)
	messaging := service.NewMessagingService(uploader, waClient)

	authCtl := v1.NewAuthController(registrations, accounts)
	sheetCtl := v1.NewSpreadsheetController(spreadsheets, groups)
	groupCtl := v1.NewGroupController(groups)
	exportCtl := v1.NewExportController(exports)
	waCtl := v1.NewWhatsAppController(messaging, waClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/register/admin", authCtl.RegisterAdmin)
		api.POST("/register/user", authCtl.RegisterUser)
		api.POST("/verify-code", authCtl.VerifyCode)
		api.POST("/login", authCtl.Login)
		api.POST("/forgot-password", authCtl.ForgotPassword)
		api.POST("/reset-password", authCtl.ResetPassword)
	}

	protected := r.Group("/api")
	protected.Use(middleware.VerifyToken(jwtManager))
	{
		protected.POST("/spreadsheet-setup", sheetCtl.Setup)
		protected.GET("/spreadsheet-list", sheetCtl.List)
		protected.GET("/get-active-spreadsheet", sheetCtl.GetActive)
		protected.POST("/set-active-spreadsheet", sheetCtl.SetActive)
		protected.GET("/fetch-registrations", sheetCtl.FetchRegistrations)
		protected.POST("/add-user", sheetCtl.AddUser)
		protected.PUT("/update-row", sheetCtl.UpdateRow)
		protected.DELETE("/delete-users", sheetCtl.DeleteUsers)

		protected.POST("/create-group", groupCtl.Create)
		protected.POST("/combine-groups", groupCtl.Combine)
		protected.GET("/fetch-groups", groupCtl.Fetch)
		protected.DELETE("/delete-groups", groupCtl.Delete)
		protected.POST("/add-users-to-groups", groupCtl.AddUsers)
		protected.POST("/remove-users-from-groups", groupCtl.RemoveUsers)

		protected.GET("/export-pdf", exportCtl.PDF)
		protected.GET("/export-csv", exportCtl.CSV)
		protected.GET("/export-excel", exportCtl.Excel)

		protected.POST("/send-whatsapp", waCtl.Send)
		protected.GET("/get-all-templates", waCtl.GetAllTemplates)
		protected.DELETE("/delete-template/:template_id/:template_name", waCtl.DeleteTemplate)
	}

	addr := ":" + cfg.Port
	slog.Info("server starting", "address", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
