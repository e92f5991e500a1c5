package handlers

import (
	"net/http"

	"github.com/alimgiray/crewledger/internal/middleware"
	"github.com/alimgiray/crewledger/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	tokens       *services.TokenService
	cookieSecure bool
}

func NewAuthHandler(authService *services.AuthService, tokens *services.TokenService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// SendOTP mails a one-time login code to the given address
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.SendOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP exchanges a valid code for an access token
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAccessToken(c, token, h.tokens.Expiry(), h.cookieSecure)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"user":        user,
	})
}

// SelfIdentification returns the authenticated user
func (h *AuthHandler) SelfIdentification(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the access token cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAccessToken(c, h.cookieSecure)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
