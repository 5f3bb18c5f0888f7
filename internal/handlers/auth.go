package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/audit"
	"github.com/eventflow-dev/eventflow/internal/auth"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/eventflow-dev/eventflow/internal/services"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/eventflow-dev/eventflow/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	SocialName string `json:"social_name"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("Database error when checking existing user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		SocialName:   req.SocialName,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		logrus.WithError(err).Error("Failed to create user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email)

	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	welcome := models.Notification{
		Title:   "Welcome to EventFlow",
		Message: "Your account was created successfully.",
		Type:    types.NotificationSuccess,
		UserID:  newUser.ID,
	}

	// Side effects of registration are best-effort and never fail the request.
	if err := db.DB.Create(&welcome).Error; err != nil {
		logrus.WithError(err).Warn("Failed to create welcome notification")
	} else {
		PushNotification(newUser.ID, welcome)
	}

	go services.SendWelcome(newUser.Email, newUser.Name)

	audit.Record(newUser.ID, types.EventUserRegistered, "User account created", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"email":      newUser.Email,
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  types.NewUserResponse(newUser),
		"token": token,
	})
}

func LoginUser(ctx *gin.Context) {
	var req LoginUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message as a wrong password so the response does not
			// reveal which emails are registered.
			ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
			return
		}
		logrus.WithError(err).Error("Database error when fetching user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(req.Password))

	if err != nil {
		audit.Record(existingUser.ID, types.EventLoginFailed, "Login failed: incorrect password", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
			"email":      existingUser.Email,
			"request_id": ctx.GetString(types.ContextRequestIDKey),
		})
		utils.MarkAuditRecorded(ctx)

		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(existingUser.ID, existingUser.Email)

	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(existingUser.ID, types.EventLoginSuccess, "User logged in", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{
		"user":  types.NewUserResponse(existingUser),
		"token": token,
	})
}

// VerifyToken always answers 200 with a valid flag. Clients poll it to decide
// whether a stored token is still usable, so an invalid token is a normal
// answer here, not an error status.
func VerifyToken(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")

	parts := strings.SplitN(authHeader, " ", 2)

	if authHeader == "" || len(parts) != 2 || parts[0] != "Bearer" {
		ctx.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	claims, err := auth.VerifyJWT(parts[1])

	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	userID, ok := auth.UserIDFromClaims(claims)

	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		ctx.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  types.NewUserResponse(user),
		"token": parts[1],
	})
}

// LogoutUser is an audit marker only. Tokens carry no server-side state, so
// the client discards its copy and the token simply ages out.
func LogoutUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	audit.Record(currentUser.ID, types.EventLogout, "User logged out", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
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

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}
