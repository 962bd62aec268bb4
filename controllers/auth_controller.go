package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/config"
	"github.com/ripplefeed/ripple/models"
	"github.com/ripplefeed/ripple/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles registration, credential login, and GitHub OAuth login.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required,min=2,max=32"`
		Password string `json:"password" binding:"required,min=6,max=64"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain letters, digits, '-' and '_' only")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	utils.Created(ctx, gin.H{"user": publicUser(user)})
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// OAuthRedirect generates the GitHub authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	conf, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, err.Error())
		return
	}

	state := uuid.NewString()
	utils.CacheSetBytes("oauth:state:"+state, []byte("1"), 10*time.Minute)
	utils.Success(ctx, gin.H{"url": conf.AuthCodeURL(state)})
}

// OAuthCallback exchanges the authorization code, resolves the GitHub user,
// and issues a local JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	state := ctx.Query("state")
	code := ctx.Query("code")
	if state == "" || code == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "missing state or code")
		return
	}
	if _, ok := utils.CacheGetBytes("oauth:state:" + state); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "unknown or expired oauth state")
		return
	}
	utils.InvalidateByPrefix("oauth:state:" + state)

	conf, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, err.Error())
		return
	}

	oauthCtx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()
	token, err := conf.Exchange(oauthCtx, code)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50240, "code exchange failed")
		return
	}

	ghUser, err := fetchGitHubUser(oauthCtx, conf, token)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50241, "failed to fetch github profile")
		return
	}

	user, err := a.findOrCreateOAuthUser(ghUser)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50242, "failed to resolve user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": jwtToken,
		"user":  publicUser(*user),
	})
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		return nil, errors.New("github oauth is not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		Endpoint:     github.Endpoint,
		RedirectURL:  cfg.OAuthRedirectBase + "/api/v1/auth/oauth/github/callback",
		Scopes:       []string{"read:user"},
	}, nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

func fetchGitHubUser(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*githubUser, error) {
	resp, err := conf.Client(ctx, token).Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
	}
	var gu githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, err
	}
	if gu.Login == "" {
		return nil, errors.New("github profile has no login")
	}
	return &gu, nil
}

func (a *AuthController) findOrCreateOAuthUser(gu *githubUser) (*models.User, error) {
	providerID := fmt.Sprintf("%d", gu.ID)

	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "github", providerID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Username:   a.ensureUniqueUsername(gu.Login),
		Provider:   "github",
		ProviderID: providerID,
		AvatarURL:  gu.AvatarURL,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ensureUniqueUsername suffixes the base name until it does not collide.
func (a *AuthController) ensureUniqueUsername(base string) string {
	candidate := base
	for i := 0; i < 10; i++ {
		var count int64
		if err := a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i+1)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

func publicUser(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"avatar_url": user.AvatarURL,
		"created_at": user.CreatedAt,
	}
}
