package controllers

import (
	"net/http"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateSalonInput struct {
	Name         *string      `json:"name"`
	Address      *string      `json:"address"`
	Description  *string      `json:"description"`
	WorkingHours models.JSONB `json:"workingHours"`
	IsActive     *bool        `json:"isActive"`
}

// ListSalons is the public marketplace browse endpoint
func ListSalons(c *gin.Context) {
	var salons []models.Salon
	query := config.DB.Where("is_active = ?", true).
		Preload("Services", "is_active = ?", true)

	if q := c.Query("q"); q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	if err := query.Find(&salons).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve salons")
		return
	}

	c.JSON(http.StatusOK, salons)
}

// GetSalon retrieves one active salon with its services
func GetSalon(c *gin.Context) {
	salonID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var salon models.Salon
	if err := config.DB.Where("id = ? AND is_active = ?", salonID, true).
		Preload("Services", "is_active = ?", true).
		First(&salon).Error; err != nil {
		utils.RespondWithDBError(c, err, "Salon not found")
		return
	}

	c.JSON(http.StatusOK, salon)
}

// UpdateMySalon lets an owner edit their salon profile
func UpdateMySalon(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var input UpdateSalonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonID).Error; err != nil {
		utils.RespondWithDBError(c, err, "Salon not found")
		return
	}

	if input.Name != nil {
		salon.Name = *input.Name
	}
	if input.Address != nil {
		salon.Address = *input.Address
	}
	if input.Description != nil {
		salon.Description = *input.Description
	}
	if input.WorkingHours != nil {
		salon.WorkingHours = input.WorkingHours
	}
	if input.IsActive != nil {
		salon.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update salon")
		return
	}

	c.JSON(http.StatusOK, salon)
}

// GetSalonBookings lists bookings for the owner's salon
func GetSalonBookings(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var bookings []models.Booking
	query := config.DB.Where("salon_id = ?", salonID).Order("starts_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&bookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}
