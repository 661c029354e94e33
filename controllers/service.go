// controllers/service.go
package controllers

import (
	"net/http"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"

	"github.com/gin-gonic/gin"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,min=0"`
	Duration    int     `json:"duration" binding:"min=0"` // in minutes
	Category    string  `json:"category"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Duration    *int     `json:"duration"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"isActive"`
}

// CreateService creates a new service for the owner's salon
func CreateService(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		SalonID:     salonID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		Category:    input.Category,
		IsActive:    true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices retrieves all services for the owner's salon
func GetServices(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := config.DB.Where("salon_id = ?", salonID).Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService retrieves a specific service by ID
func GetService(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	serviceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ?", salonID, serviceID).
		First(&service).Error; err != nil {
		utils.RespondWithDBError(c, err, "Service not found")
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateService updates an existing service
func UpdateService(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	serviceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ?", salonID, serviceID).
		First(&service).Error; err != nil {
		utils.RespondWithDBError(c, err, "Service not found")
		return
	}

	// Update fields if provided
	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService soft deletes a service
func DeleteService(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	serviceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonID, serviceID).
		Delete(&models.Service{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
