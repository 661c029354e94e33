package controllers

import (
	"errors"
	"net/http"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	BookingID uuid.UUID `json:"bookingId" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment" binding:"max=2000"`
}

type ReportReviewInput struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type ResolveReportInput struct {
	Action string `json:"action" binding:"required,oneof=dismiss uphold"`
}

// CreateReview posts a review for a completed booking and runs it through
// the moderation pipeline before responding.
func CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var booking models.Booking
	if err := config.DB.Where("id = ? AND customer_id = ?", input.BookingID, userID).
		First(&booking).Error; err != nil {
		utils.RespondWithDBError(c, err, "Booking not found")
		return
	}

	if booking.Status != models.BookingStatusConfirmed || booking.StartsAt.After(time.Now()) {
		utils.RespondWithError(c, http.StatusConflict, "Only completed bookings can be reviewed")
		return
	}

	var existing models.Review
	if err := config.DB.Where("booking_id = ?", input.BookingID).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Booking already reviewed")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	review := models.Review{
		BookingID:        booking.ID,
		SalonID:          booking.SalonID,
		CustomerID:       userID,
		Rating:           input.Rating,
		Comment:          input.Comment,
		IsVisible:        true,
		ModerationStatus: models.ModerationPending,
	}

	if err := config.DB.Create(&review).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create review")
		return
	}

	if err := moderator.ModerateReview(&review); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to moderate review")
		return
	}

	// Re-read so the caller sees the moderation outcome
	config.DB.First(&review, "id = ?", review.ID)

	c.JSON(http.StatusCreated, review)
}

// GetSalonReviews is the public listing of visible reviews for a salon
func GetSalonReviews(c *gin.Context) {
	salonID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var reviews []models.Review
	if err := config.DB.Where("salon_id = ? AND is_visible = ?", salonID, true).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// DeleteReview lets the author soft-delete their review
func DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviewID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("id = ? AND customer_id = ?", reviewID, userID).
		Delete(&models.Review{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete review")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Review not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// ReportReview opens a moderation report against a review
func ReportReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviewID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input ReportReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var review models.Review
	if err := config.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		utils.RespondWithDBError(c, err, "Review not found")
		return
	}

	var existing models.ReviewReport
	err := config.DB.Where("review_id = ? AND reporter_id = ? AND status = ?",
		reviewID, userID, models.ReportStatusOpen).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "You already have an open report for this review")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	report := models.ReviewReport{
		ReviewID:   review.ID,
		SalonID:    review.SalonID,
		ReporterID: &userID,
		Reason:     input.Reason,
		Status:     models.ReportStatusOpen,
	}

	if err := config.DB.Create(&report).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create report")
		return
	}

	c.JSON(http.StatusCreated, report)
}

// GetSalonReports lists open reports against the owner's salon reviews
func GetSalonReports(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var reports []models.ReviewReport
	query := config.DB.Where("salon_id = ?", salonID).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&reports).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ResolveReport closes a report; upholding it hides the review
func ResolveReport(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	reportID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input ResolveReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var report models.ReviewReport
	if err := config.DB.Where("id = ? AND salon_id = ?", reportID, salonID).
		First(&report).Error; err != nil {
		utils.RespondWithDBError(c, err, "Report not found")
		return
	}

	if report.Status != models.ReportStatusOpen {
		utils.RespondWithError(c, http.StatusConflict, "Report already resolved")
		return
	}

	newStatus := models.ReportStatusDismissed
	if input.Action == "uphold" {
		newStatus = models.ReportStatusUpheld
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&report).Update("status", newStatus).Error; err != nil {
			return err
		}
		if newStatus != models.ReportStatusUpheld {
			return nil
		}
		return tx.Model(&models.Review{}).Where("id = ?", report.ReviewID).
			Updates(map[string]interface{}{
				"is_visible":        false,
				"moderation_status": models.ModerationRejected,
				"moderation_reason": "report upheld by salon owner",
			}).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve report")
		return
	}

	report.Status = newStatus
	c.JSON(http.StatusOK, report)
}
