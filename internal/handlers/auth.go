package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ernie1234/team-task-backend/internal/config"
	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/pkg/logger"
	"github.com/Ernie1234/team-task-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// bootstrapWorkspace gives a new account a starter workspace and makes
// it their current one. Failures are logged; signup still succeeds.
func bootstrapWorkspace(user *models.User) {
	workspace := models.Workspace{
		Name:       "My Workspace",
		OwnerID:    user.ID,
		InviteCode: utils.GenerateInviteCode(),
	}
	if err := database.DB.Create(&workspace).Error; err != nil {
		logger.Error().Err(err).Str("userId", user.ID).Msg("Failed to bootstrap workspace")
		return
	}
	ownerRole, err := ensureRole(models.RoleOwner)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to ensure owner role")
		return
	}
	if err := database.DB.Create(&models.Member{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		RoleID:      ownerRole.ID,
	}).Error; err != nil {
		logger.Error().Err(err).Str("userId", user.ID).Msg("Failed to bootstrap membership")
		return
	}
	database.DB.Model(user).Update("current_workspace_id", workspace.ID)
	user.CurrentWorkspaceID = &workspace.ID
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if err := database.DB.First(&existing, "email = ?", input.Email).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	bootstrapWorkspace(&user)

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	logger.Info().Str("userId", user.ID).Msg("User registered")
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "email = ?", input.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	now := time.Now()
	database.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout revokes the presented token for the remainder of its lifetime
func Logout(c *gin.Context) {
	claimsVal, exists := c.Get("claims")
	if exists {
		if claims, ok := claimsVal.(*utils.Claims); ok {
			ttl := 7 * 24 * time.Hour
			if claims.ExpiresAt != nil {
				ttl = time.Until(claims.ExpiresAt.Time)
			}
			if ttl > 0 {
				if err := database.BlacklistToken(claims.GetJTI(), ttl); err != nil {
					logger.Error().Err(err).Msg("Failed to blacklist token")
				}
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": true})
}

// CurrentUser returns the authenticated user's profile
func CurrentUser(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// --- Google OAuth ---

var googleOauthConfig *oauth2.Config

func InitOAuthConfig() {
	cfg := config.AppConfig
	if cfg.GoogleClientID != "" {
		googleOauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
}

func GoogleLogin(c *gin.Context) {
	if googleOauthConfig == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	url := googleOauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func GoogleCallback(c *gin.Context) {
	if googleOauthConfig == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Google sign-in is not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	client := googleOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}
	defer resp.Body.Close()

	var info struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "email = ?", info.Email).Error; err != nil {
		user = models.User{
			Name:           info.Name,
			Email:          info.Email,
			ProfilePicture: info.Picture,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
		bootstrapWorkspace(&user)
		logger.Info().Str("userId", user.ID).Msg("User registered via Google")
	}

	jwtToken, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, config.AppConfig.FrontendURL+"/auth/callback?token="+jwtToken)
}
