package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/wisetv/wisetv/auth"
	"github.com/wisetv/wisetv/config"
	"github.com/wisetv/wisetv/middleware"
	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/utils"
)

const sessionDuration = 72 * time.Hour

// AuthController handles admin authentication: password login through the
// auth gate plus Google OAuth for allow-listed admin emails.
type AuthController struct {
	db   *gorm.DB
	gate *auth.Gate
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB, gate *auth.Gate) *AuthController {
	return &AuthController{db: db, gate: gate}
}

// Login authenticates an admin with email and password and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	identity, err := a.gate.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50003, "login failed")
		return
	}

	token, err := utils.GenerateToken(identity.ID, identity.Email, sessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"admin": gin.H{"id": identity.ID, "email": identity.Email, "name": identity.Name},
	})
}

// Logout revokes the presented token and clears the gate session. It always
// reports success to the caller.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token != "" {
		expiresAt := time.Now().Add(sessionDuration)
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		utils.BlacklistToken(token, expiresAt)
	}
	a.gate.Logout()
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated admin profile.
func (a *AuthController) Me(ctx *gin.Context) {
	adminID := ctx.GetUint(middleware.ContextAdminIDKey)

	var admin models.AdminUser
	if err := a.db.First(&admin, adminID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "admin not found")
		return
	}
	utils.Success(ctx, gin.H{"admin": gin.H{"id": admin.ID, "email": admin.Email, "name": admin.Name}})
}

// OAuthRedirect generates the Google authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code, verifies the email is an
// allow-listed admin, and issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}

	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	info, err := fetchGoogleUser(token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	if !isAdminEmail(info.Email) {
		utils.Error(ctx, http.StatusForbidden, 40310, "email is not an admin account")
		return
	}

	admin, err := a.findOrCreateOAuthAdmin(info)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist admin")
		return
	}

	jwtToken, err := utils.GenerateToken(admin.ID, admin.Email, sessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	a.gate.Restore(&auth.Identity{ID: admin.ID, Email: admin.Email, Name: admin.Name})

	utils.Success(ctx, gin.H{
		"token": jwtToken,
		"admin": gin.H{"id": admin.ID, "email": admin.Email, "name": admin.Name},
	})
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("google oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}, nil
}

type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func fetchGoogleUser(token *oauth2.Token) (*googleUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload googleUser
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (a *AuthController) findOrCreateOAuthAdmin(info *googleUser) (*models.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))

	var admin models.AdminUser
	err := a.db.Where("email = ?", email).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			admin = models.AdminUser{
				Email:    email,
				Name:     info.Name,
				Provider: "google",
			}
			if err := a.db.Create(&admin).Error; err != nil {
				return nil, err
			}
			return &admin, nil
		}
		return nil, err
	}

	if info.Name != "" && admin.Name != info.Name {
		_ = a.db.Model(&admin).Update("name", info.Name).Error
	}
	return &admin, nil
}

func isAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	cfg := config.Get()
	for _, e := range cfg.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
