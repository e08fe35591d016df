package controllers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quizwhiz/quizwhiz-backend/models"
	"github.com/quizwhiz/quizwhiz-backend/utils"
)

const maxAvatarBytes = 2 << 20

type CreateUserInput struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type CheckUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func issueToken(c *gin.Context, status int, user models.User) {
	token, err := utils.GenerateToken(user.ID.String())
	if err != nil {
		log.Printf("generate token for %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(status, gin.H{"authToken": token})
}

func CreateUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Sorry a user with this email already exists"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("create user %s: %v", input.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	utils.SendWelcomeEmailAsync(user.Email, user.Name)
	issueToken(c, http.StatusOK, user)
}

func CheckUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CheckUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No such account exists"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	issueToken(c, http.StatusOK, user)
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLogin signs in with a Google ID token, creating the account on first use.
func GoogleLogin(clientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)
		if clientID == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login is not configured"})
			return
		}

		var input GoogleLoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload, err := idtoken.Validate(c, input.IDToken, clientID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		email, _ := payload.Claims["email"].(string)
		name, _ := payload.Claims["name"].(string)
		picture, _ := payload.Claims["picture"].(string)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Google account has no email"})
			return
		}

		var user models.User
		err = db.Where("email = ?", strings.ToLower(email)).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Google accounts have no usable password until one is set.
			user = models.User{
				Name:           name,
				Email:          strings.ToLower(email),
				AvatarImageURL: picture,
			}
			if err := db.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create Google user"})
				return
			}
			utils.SendWelcomeEmailAsync(user.Email, user.Name)
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		issueToken(c, http.StatusOK, user)
	}
}

func currentUser(c *gin.Context) (*gorm.DB, models.User, bool) {
	db := c.MustGet("db").(*gorm.DB)
	var user models.User
	if err := db.First(&user, "id = ?", c.GetString("user_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return db, user, false
	}
	return db, user, true
}

func GetUser(c *gin.Context) {
	_, user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateUserInput struct {
	Name              string  `json:"name"`
	Bio               *string `json:"bio"`
	SelectedAvatarURL *string `json:"selectedAvatarUrl"`
}

func UpdateUser(c *gin.Context) {
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Name is required and must be at least 3 characters long",
		})
		return
	}

	db, user, ok := currentUser(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{"name": name}
	if input.Bio != nil && strings.TrimSpace(*input.Bio) != "" {
		updates["bio"] = strings.TrimSpace(*input.Bio)
	}
	if input.SelectedAvatarURL != nil && strings.TrimSpace(*input.SelectedAvatarURL) != "" {
		updates["avatar_image_url"] = strings.TrimSpace(*input.SelectedAvatarURL)
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error during profile update"})
		return
	}
	db.First(&user, "id = ?", user.ID)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// AvatarUploader stores profile pictures and returns their public URL.
type AvatarUploader interface {
	Enabled() bool
	UploadAvatar(fileHeader *multipart.FileHeader, userID string) (string, error)
	DeleteAvatar(publicURL string) error
}

func UploadAvatar(uploader AvatarUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uploader == nil || !uploader.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Avatar storage is not configured"})
			return
		}

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing avatar file"})
			return
		}
		if fileHeader.Size > maxAvatarBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be 2MB or smaller"})
			return
		}
		if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be an image"})
			return
		}

		db, user, ok := currentUser(c)
		if !ok {
			return
		}

		url, err := uploader.UploadAvatar(fileHeader, user.ID.String())
		if err != nil {
			log.Printf("avatar upload for %s: %v", user.ID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not upload avatar"})
			return
		}

		previous := user.AvatarImageURL
		if err := db.Model(&user).Update("avatar_image_url", url).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save avatar"})
			return
		}
		db.First(&user, "id = ?", user.ID)
		if previous != "" && previous != url {
			if err := uploader.DeleteAvatar(previous); err != nil {
				log.Printf("delete old avatar %s: %v", previous, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}

type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func UpdatePassword(c *gin.Context) {
	var input UpdatePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if input.CurrentPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Current password is required"})
		return
	}
	if len(input.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "New password must be at least 8 characters long"})
		return
	}

	db, user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Current password is incorrect"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not hash password"})
		return
	}
	if err := db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error during password change"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
		"user":    user,
	})
}

func DeleteAccount(c *gin.Context) {
	db, user, ok := currentUser(c)
	if !ok {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := deleteResultsOf(tx, user.ID.String()); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		log.Printf("delete account %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error during account deletion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account and all associated data deleted successfully",
	})
}
