package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/audit"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/eventflow-dev/eventflow/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name        string                 `json:"name"`
	Email       string                 `json:"email" binding:"omitempty,email"`
	SocialName  *string                `json:"social_name"`
	Bio         *string                `json:"bio"`
	Credentials map[string]interface{} `json:"credentials"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type UpdatePictureRequest struct {
	ProfilePicture string `json:"profile_picture" binding:"required,url"`
}

type ProfileResponse struct {
	types.UserResponse
	Credentials json.RawMessage `json:"credentials,omitempty"`
}

func newProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		UserResponse: types.NewUserResponse(user),
		Credentials:  json.RawMessage(user.Credentials),
	}
}

func GetProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": newProfileResponse(user)})
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var dbUser models.User

	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdateProfileRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}

	if req.Email != "" {
		newEmail := strings.ToLower(strings.TrimSpace(req.Email))

		if newEmail != dbUser.Email {
			var existingUser models.User
			err := db.DB.Where("email = ? AND id != ?", newEmail, dbUser.ID).First(&existingUser).Error
			if err == nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Error("Database error when checking existing email")
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
		}

		updates["email"] = newEmail
	}

	if req.SocialName != nil {
		updates["social_name"] = strings.TrimSpace(*req.SocialName)
	}

	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}

	if req.Credentials != nil {
		encoded, err := json.Marshal(req.Credentials)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials format"})
			return
		}
		updates["credentials"] = encoded
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&dbUser).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("Failed to update user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.First(&dbUser, dbUser.ID).Error; err != nil {
		logrus.WithError(err).Error("Failed to refresh user data")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	changed := make([]string, 0, len(updates))
	for field := range updates {
		changed = append(changed, field)
	}

	audit.Record(dbUser.ID, types.EventProfileUpdated, "Profile updated", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"fields":     changed,
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    newProfileResponse(dbUser),
	})
}

func UpdatePassword(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var dbUser models.User

	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdatePasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.CurrentPassword))

	if err != nil {
		audit.Record(dbUser.ID, types.EventPasswordChangeFailed, "Password change failed: incorrect current password", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
			"request_id": ctx.GetString(types.ContextRequestIDKey),
		})
		utils.MarkAuditRecorded(ctx)

		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		logrus.WithError(err).Error("Failed to hash new password")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&dbUser).Update("password_hash", string(passwordHash)).Error; err != nil {
		logrus.WithError(err).Error("Failed to update password")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(dbUser.ID, types.EventPasswordChanged, "Password changed", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func UpdatePicture(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdatePictureRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A valid profile picture URL is required"})
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", currentUser.ID).Update("profile_picture", req.ProfilePicture).Error; err != nil {
		logrus.WithError(err).Error("Failed to update profile picture")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(currentUser.ID, types.EventProfilePictureUpdated, "Profile picture updated", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Profile picture updated successfully"})
}

// DeleteAccount removes the user and everything they own. Events carry no
// foreign key (the system sentinel has no users row), so the cascade is an
// explicit transaction rather than a database constraint.
func DeleteAccount(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var dbUser models.User

	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		logrus.WithError(err).Error("Failed to fetch user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required for account deletion"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.Password))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", dbUser.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", dbUser.ID).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&dbUser).Error
	})

	if err != nil {
		logrus.WithError(err).Error("Failed to delete user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// The owner is gone, so the trail entry belongs to the system actor.
	audit.Record(models.SystemUserID, types.EventAccountDeleted, "Account deleted", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"deleted_user_id": dbUser.ID,
		"email":           dbUser.Email,
		"request_id":      ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
