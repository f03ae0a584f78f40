package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planpulse/planpulse/config"
	"github.com/planpulse/planpulse/middleware"
	"github.com/planpulse/planpulse/utils"
)

const sessionDuration = 72 * time.Hour

// AuthController authenticates the single configured operator. The
// configured password is hashed once at construction so only the bcrypt
// digest is kept in memory.
type AuthController struct {
	username     string
	passwordHash string
}

// NewAuthController creates a new controller instance from configuration.
func NewAuthController(cfg config.AppConfig) *AuthController {
	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		// bcrypt only fails on oversized input; refuse to boot half-configured
		panic(err)
	}
	return &AuthController{username: cfg.AdminUsername, passwordHash: hash}
}

// Login verifies operator credentials and issues a session token.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if req.Username != a.username || !utils.CheckPassword(a.passwordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(a.username, sessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":    token,
		"username": a.username,
	})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token != "" {
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Check reports whether the presented token is a valid session. Public so
// the UI can decide whether to show the login page.
func (a *AuthController) Check(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" || utils.IsTokenBlacklisted(token) {
		utils.Success(ctx, gin.H{"authenticated": false})
		return
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Success(ctx, gin.H{"authenticated": false})
		return
	}
	utils.Success(ctx, gin.H{"authenticated": true, "username": claims.Username})
}

// Me returns the authenticated operator identity.
func (a *AuthController) Me(ctx *gin.Context) {
	username, _ := ctx.Get(middleware.ContextUsernameKey)
	utils.Success(ctx, gin.H{"username": username})
}

func bearerToken(ctx *gin.Context) string {
	parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
