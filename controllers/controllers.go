package controllers

import (
	"net/http"
	"salonhub-backend/config"
	"salonhub-backend/services"
	"salonhub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	stripeSvc *services.StripeService
	notifier  *services.NotificationService
	moderator *services.ModerationService
)

// Setup wires the external-service clients. Called from main after the
// environment is loaded; tests swap in their own instances.
func Setup() {
	stripeSvc = services.NewStripeService()
	notifier = services.NewNotificationService()
	moderator = services.NewModerationService(config.DB)
}

// currentUserID pulls the authenticated user ID out of the claims set by
// the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	str, _ := raw.(string)
	id, err := uuid.Parse(str)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// currentSalonID pulls the owner's salon ID; only present on owner tokens.
func currentSalonID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("salonId")
	if !exists {
		utils.RespondWithError(c, http.StatusForbidden, "Salon ID not found in context")
		return uuid.Nil, false
	}
	str, _ := raw.(string)
	id, err := uuid.Parse(str)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid salon ID format")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :param route segment as a UUID.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}
