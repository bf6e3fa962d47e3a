package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/auth"
	"github.com/nishantd01/sheetdesk/middleware"
	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/service"
)

type AuthController struct {
	registrations *service.RegistrationService
	accounts      *service.AccountService
}

func NewAuthController(registrations *service.RegistrationService, accounts *service.AccountService) *AuthController {
	return &AuthController{registrations: registrations, accounts: accounts}
}

// POST /api/register/admin
func (ctl *AuthController) RegisterAdmin(ctx *gin.Context) {
	var req models.RegisterAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.registrations.RegisterAdmin(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Security code sent. Please verify to complete registration."})
}

// POST /api/register/user
func (ctl *AuthController) RegisterUser(ctx *gin.Context) {
	var req models.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.registrations.RegisterUser(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Security code sent. Please verify to complete registration."})
}

// POST /api/verify-code
func (ctl *AuthController) VerifyCode(ctx *gin.Context) {
	var req models.VerifyCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	switch req.Purpose {
	case "registration":
		if err := ctl.registrations.VerifyRegistration(ctx.Request.Context(), req.Email, req.Code, req.IsAdmin); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification successful. Registration completed."})
	case "login":
		token, err := ctl.accounts.VerifyLogin(ctx.Request.Context(), req)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctl.setTokenCookie(ctx, token)
		ctx.JSON(http.StatusOK, gin.H{"success": true, "token": token})
	default:
		respondBadRequest(ctx, "invalid purpose")
	}
}

// POST /api/login
func (ctl *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	token, err := ctl.accounts.Login(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctl.setTokenCookie(ctx, token)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// POST /api/forgot-password
func (ctl *AuthController) ForgotPassword(ctx *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.accounts.ForgotPassword(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset code sent"})
}

// POST /api/reset-password
func (ctl *AuthController) ResetPassword(ctx *gin.Context) {
	var req models.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.accounts.ResetPassword(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

// The cookie mirrors the token for browser clients; logout is cookie
// deletion only, the token itself stays valid until its expiry claim.
func (ctl *AuthController) setTokenCookie(ctx *gin.Context, token string) {
	ctx.SetCookie(middleware.TokenCookie, token, int(auth.TokenDuration.Seconds()), "/", "", false, true)
}
