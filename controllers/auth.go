package controllers

import (
	"errors"
	"net/http"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=customer owner"`

	// Owner-only fields
	SalonName    string       `json:"salonName"`
	SalonAddress string       `json:"salonAddress"`
	WorkingHours models.JSONB `json:"workingHours"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	if input.Role == models.RoleOwner && input.SalonName == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "salonName is required for owners")
		return
	}

	// Check if email or phone already exists
	var existingUser models.User
	result := config.DB.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existingUser)

	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	newUser := models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Name:     input.Name,
		Password: input.Password, // Hashed in BeforeCreate hook
		Role:     input.Role,
		IsActive: true,
	}

	// Owners get a salon row in the same transaction
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		if input.Role != models.RoleOwner {
			return nil
		}
		salon := models.Salon{
			OwnerID:      newUser.ID,
			Name:         input.SalonName,
			Address:      input.SalonAddress,
			WorkingHours: input.WorkingHours,
			IsActive:     true,
		}
		if salon.WorkingHours == nil {
			salon.WorkingHours = defaultWorkingHours()
		}
		if err := tx.Create(&salon).Error; err != nil {
			return err
		}
		newUser.SalonID = &salon.ID
		return tx.Model(&newUser).Update("salon_id", salon.ID).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := issueToken(&newUser)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":    newUser.ID,
			"email": newUser.Email,
			"phone": newUser.Phone,
			"name":  newUser.Name,
			"role":  newUser.Role,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)

	var user models.User
	result := config.DB.Where("email = ? OR phone = ?", identifier, identifier).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := issueToken(&user)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"phone": user.Phone,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

func Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	resp := gin.H{
		"id":    user.ID,
		"email": user.Email,
		"phone": user.Phone,
		"name":  user.Name,
		"role":  user.Role,
	}
	if user.SalonID != nil {
		resp["salonId"] = user.SalonID
	}
	c.JSON(http.StatusOK, gin.H{"user": resp})
}

func issueToken(user *models.User) (string, error) {
	salonID := ""
	if user.SalonID != nil {
		salonID = user.SalonID.String()
	}
	return utils.GenerateToken(user.ID.String(), user.Role, salonID)
}

func defaultWorkingHours() models.JSONB {
	return models.JSONB{
		"monday":    map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"tuesday":   map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"wednesday": map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"thursday":  map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"friday":    map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"saturday":  map[string]interface{}{"open": "09:00", "close": "21:00", "closed": false},
		"sunday":    map[string]interface{}{"open": "10:00", "close": "19:00", "closed": true},
	}
}
