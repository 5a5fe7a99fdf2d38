package controllers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricely/middleware"
	"pricely/models"
	"pricely/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errMailerDisabled = errors.New("mailer is not configured")

// selfUser loads the user addressed by :slug and makes sure it is the caller.
func (uc *UserController) selfUser(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := uc.db.Where("slug = ?", c.Param("slug")).First(&user).Error; err != nil {
		respondDBError(c, err, "user lookup")
		return user, false
	}
	if user.ID != middleware.CurrentUserID(c) {
		respondError(c, http.StatusForbidden, "You can only access your own profile")
		return user, false
	}
	return user, true
}

// GET /users/:slug/
func (uc *UserController) Profile(c *gin.Context) {
	user, ok := uc.selfUser(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, gin.H{"title": user.FullName(), "object": user.View()})
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// PUT /users/:slug/
func (uc *UserController) UpdateProfile(c *gin.Context) {
	user, ok := uc.selfUser(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		updates["first_name"] = user.FirstName
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		updates["last_name"] = user.LastName
	}
	if len(updates) > 0 {
		if err := uc.db.Model(&user).Updates(updates).Error; err != nil {
			respondDBError(c, err, "update profile")
			return
		}
	}
	respondOK(c, http.StatusOK, user.View())
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// POST /users/:slug/password
func (uc *UserController) ChangePassword(c *gin.Context) {
	user, ok := uc.selfUser(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if !utils.CheckPasswordHash(req.OldPassword, user.Password) {
		respondError(c, http.StatusUnauthorized, "Old password is incorrect")
		return
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.LogError(err, "hash password")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := uc.db.Model(&user).Update("password", hash).Error; err != nil {
		respondDBError(c, err, "change password")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "password changed"})
}

type changeEmailRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required"`
}

// POST /users/:slug/email changes the address and marks it unverified until confirmed.
func (uc *UserController) ChangeEmail(c *gin.Context) {
	user, ok := uc.selfUser(c)
	if !ok {
		return
	}
	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		respondError(c, http.StatusUnauthorized, "Password is incorrect")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == user.Email {
		respondOK(c, http.StatusOK, user.View())
		return
	}

	var taken int64
	if err := uc.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&taken).Error; err != nil {
		respondDBError(c, err, "email lookup")
		return
	}
	if taken > 0 {
		respondError(c, http.StatusConflict, "Email is already in use")
		return
	}

	user.Email = email
	user.IsVerified = false
	if err := uc.db.Model(&user).Select("email", "is_verified").Updates(&user).Error; err != nil {
		respondDBError(c, err, "change email")
		return
	}
	if err := uc.sendVerification(c.Request.Context(), user, email); err != nil {
		utils.LogError(err, "change email verification")
	}
	respondOK(c, http.StatusOK, user.View())
}

// POST /users/verification/send/:email/
func (uc *UserController) SendVerificationEmail(c *gin.Context) {
	var user models.User
	if err := uc.db.First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		respondDBError(c, err, "user lookup")
		return
	}
	email := strings.ToLower(c.Param("email"))
	if email != user.Email {
		respondError(c, http.StatusForbidden, "Email does not belong to the current user")
		return
	}
	if user.IsVerified {
		respondError(c, http.StatusBadRequest, "Email is already verified")
		return
	}

	ctx := c.Request.Context()
	limitKey := fmt.Sprintf("user_%d", user.ID)
	if ok, msg := utils.CanSendVerification(ctx, uc.rdb, limitKey); !ok {
		respondError(c, http.StatusTooManyRequests, msg)
		return
	}
	if err := uc.sendVerification(ctx, user, email); err != nil {
		utils.LogError(err, "send verification email")
		respondError(c, http.StatusServiceUnavailable, "Could not send verification email")
		return
	}
	utils.MarkVerificationSent(ctx, uc.rdb, limitKey)
	respondOK(c, http.StatusOK, gin.H{"status": "verification email sent"})
}

// GET /users/verify/:email/:code/
func (uc *UserController) VerifyEmail(c *gin.Context) {
	code, err := uuid.Parse(c.Param("code"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	email := strings.ToLower(c.Param("email"))

	var verification models.EmailVerification
	if err := uc.db.Preload("User").Where("code = ? AND email = ?", code, email).First(&verification).Error; err != nil {
		respondDBError(c, err, "verification lookup")
		return
	}
	if verification.IsExpired(time.Now()) {
		respondError(c, http.StatusBadRequest, "Verification link has expired")
		return
	}
	if verification.User.Email != verification.Email {
		respondError(c, http.StatusBadRequest, "Verification link is outdated")
		return
	}

	err = uc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", verification.UserID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", verification.UserID).Delete(&models.EmailVerification{}).Error
	})
	if err != nil {
		respondDBError(c, err, "verify email")
		return
	}
	user := verification.User
	user.IsVerified = true
	respondOK(c, http.StatusOK, gin.H{"status": "email verified", "user": user.View()})
}

// sendVerification stores a new verification code and mails the confirmation link.
func (uc *UserController) sendVerification(ctx context.Context, user models.User, email string) error {
	if uc.mailer == nil {
		return errMailerDisabled
	}
	verification := models.EmailVerification{
		UserID:    user.ID,
		Email:     email,
		Code:      uuid.New(),
		ExpiresAt: time.Now().Add(uc.cfg.EmailVerificationTTL),
	}
	if err := uc.db.WithContext(ctx).Omit("User").Create(&verification).Error; err != nil {
		return fmt.Errorf("store verification: %w", err)
	}

	link := fmt.Sprintf("%s/users/verify/%s/%s/", uc.cfg.SiteURL, url.PathEscape(email), verification.Code)
	subject := "Confirm your email address"
	text := fmt.Sprintf("Hello %s,\n\nconfirm your email address by opening the link below:\n%s\n\nThe link expires on %s.\n",
		user.FullName(), link, verification.ExpiresAt.Format(time.RFC1123))
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p><p>confirm your email address by opening <a href="%s">this link</a>.</p>`,
		html.EscapeString(user.FullName()), html.EscapeString(link))
	if err := uc.mailer.Send(email, subject, text, htmlBody); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
