package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pricely/config"
	"pricely/middleware"
	"pricely/models"
	"pricely/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	googleStateTTL  = 10 * time.Minute
	googleUserInfo  = "https://www.googleapis.com/oauth2/v2/userinfo?alt=json"
	defaultUserRole = "user"
)

type UserController struct {
	db     *gorm.DB
	rdb    *redis.Client
	cfg    *config.Config
	mailer utils.Mailer
	oauth  *oauth2.Config
}

func NewUserController(db *gorm.DB, rdb *redis.Client, cfg *config.Config, mailer utils.Mailer) *UserController {
	return &UserController{
		db:     db,
		rdb:    rdb,
		cfg:    cfg,
		mailer: mailer,
		oauth: &oauth2.Config{
			RedirectURL:  cfg.GoogleRedirect,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleSecret,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

type registerRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// uniqueSlug derives a user slug from the username, suffixing -2, -3... on collision.
func (uc *UserController) uniqueSlug(username string) (string, error) {
	return uc.freeHandle(utils.Slugify(username, "user"), "slug")
}

// freeHandle returns base, or base-2, base-3..., whichever is unused in every given column.
func (uc *UserController) freeHandle(base string, columns ...string) (string, error) {
	conds := make([]string, len(columns))
	for i, col := range columns {
		conds[i] = col + " = ?"
	}
	where := strings.Join(conds, " OR ")
	args := make([]interface{}, len(columns))

	handle := base
	for n := 2; ; n++ {
		for i := range args {
			args[i] = handle
		}
		var count int64
		err := uc.db.Unscoped().Model(&models.User{}).
			Where(where, args...).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return handle, nil
		}
		handle = fmt.Sprintf("%s-%d", base, n)
	}
}

func (uc *UserController) issueToken(c *gin.Context, status int, user models.User) {
	token, expiresAt, err := utils.GenerateJWT(user.ID, user.Role, uc.cfg.JWTSecret, uc.cfg.JWTTTL)
	if err != nil {
		utils.LogError(err, "generate jwt")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondOK(c, status, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user.View(),
	})
}

// POST /users/registration/
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := uc.db.Model(&models.User{}).
		Where("LOWER(username) = ? OR email = ?", strings.ToLower(req.Username), req.Email).
		Count(&count).Error; err != nil {
		respondDBError(c, err, "registration lookup")
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "A user with that username or email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError(err, "hash password")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	slug, err := uc.uniqueSlug(req.Username)
	if err != nil {
		respondDBError(c, err, "user slug")
		return
	}

	user := models.User{
		Username:  req.Username,
		Slug:      slug,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
		Role:      defaultUserRole,
	}
	if err := uc.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "A user with that username or email already exists")
			return
		}
		respondDBError(c, err, "create user")
		return
	}

	if err := uc.sendVerification(c.Request.Context(), user, user.Email); err != nil {
		utils.LogError(err, "registration verification email")
	}
	uc.issueToken(c, http.StatusCreated, user)
}

// POST /users/login/ accepts a username or an email as login.
func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "login and password are required")
		return
	}
	login := strings.ToLower(strings.TrimSpace(req.Login))
	ctx := c.Request.Context()
	limitKey := c.ClientIP() + ":" + login

	if utils.LoginBlocked(ctx, uc.rdb, limitKey) {
		respondError(c, http.StatusTooManyRequests, "Too many failed login attempts, try again later")
		return
	}

	var user models.User
	err := uc.db.Where("LOWER(username) = ? OR email = ?", login, login).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondDBError(c, err, "login lookup")
		return
	}
	if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		utils.MarkLoginFailure(ctx, uc.rdb, limitKey)
		respondError(c, http.StatusUnauthorized, "Invalid login or password")
		return
	}

	utils.ResetLoginFailures(ctx, uc.rdb, limitKey)
	uc.issueToken(c, http.StatusOK, user)
}

// POST /users/logout/ revokes the current token until it would have expired.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)
	claims, err := utils.ParseJWT(token, uc.cfg.JWTSecret)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	ttl := uc.cfg.JWTTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		if err := uc.rdb.Set(c.Request.Context(), middleware.BlacklistKey(token), "1", ttl).Err(); err != nil {
			utils.LogError(err, "blacklist token")
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
	}
	respondOK(c, http.StatusOK, gin.H{"status": "logged out"})
}

func googleStateKey(state string) string {
	return "google:state:" + state
}

// GET /users/google/
func (uc *UserController) GoogleLogin(c *gin.Context) {
	state := utils.GenerateSessionID()
	if err := uc.rdb.Set(c.Request.Context(), googleStateKey(state), "1", googleStateTTL).Err(); err != nil {
		utils.LogError(err, "store oauth state")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Redirect(http.StatusFound, uc.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

type googleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// GET /users/google/callback/
func (uc *UserController) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	state := c.Query("state")
	if state == "" || uc.rdb.Del(ctx, googleStateKey(state)).Val() == 0 {
		respondError(c, http.StatusBadRequest, "invalid oauth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "code not found")
		return
	}

	token, err := uc.oauth.Exchange(ctx, code)
	if err != nil {
		respondError(c, http.StatusBadRequest, "token exchange failed")
		return
	}
	resp, err := uc.oauth.Client(ctx, token).Get(googleUserInfo)
	if err != nil {
		respondError(c, http.StatusBadGateway, "failed to get user info")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respondError(c, http.StatusBadGateway, "failed to get user info")
		return
	}
	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		respondError(c, http.StatusBadGateway, "failed to decode user info")
		return
	}

	user, err := uc.googleUser(profile)
	if err != nil {
		respondDBError(c, err, "google user")
		return
	}
	uc.issueToken(c, http.StatusOK, user)
}

// googleUser finds the account linked to the Google profile, linking by email
// or creating a new account when needed.
func (uc *UserController) googleUser(profile googleProfile) (models.User, error) {
	email := strings.ToLower(profile.Email)
	var user models.User
	err := uc.db.Where("google_id = ? OR email = ?", profile.ID, email).First(&user).Error
	switch {
	case err == nil:
		if user.GoogleID == nil {
			user.GoogleID = &profile.ID
			user.IsVerified = user.IsVerified || profile.VerifiedEmail
			err = uc.db.Model(&user).Select("google_id", "is_verified").Updates(&user).Error
		}
		return user, err
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return user, err
	}

	// the generated handle doubles as username, so it must be free in both columns
	local := strings.SplitN(email, "@", 2)[0]
	handle, err := uc.freeHandle(utils.Slugify(local, "user"), "slug", "username")
	if err != nil {
		return user, err
	}
	user = models.User{
		Username:   handle,
		Slug:       handle,
		Email:      email,
		FirstName:  profile.GivenName,
		LastName:   profile.FamilyName,
		IsVerified: profile.VerifiedEmail,
		GoogleID:   &profile.ID,
		Role:       defaultUserRole,
	}
	return user, uc.db.Create(&user).Error
}
