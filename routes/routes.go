package routes

import (
	"os"
	"strings"

	"salonhub-backend/config"
	"salonhub-backend/controllers"
	"salonhub-backend/models"
	"salonhub-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Payment provider callback, unauthenticated but signature-verified
	r.POST("/webhooks/stripe", controllers.StripeWebhook)

	api := r.Group("/api")
	{
		// Public marketplace browse
		api.GET("/salons", controllers.ListSalons)
		api.GET("/salons/:id", controllers.GetSalon)
		api.GET("/salons/:id/reviews", controllers.GetSalonReviews)

		authed := api.Group("")
		authed.Use(utils.AuthMiddleware())

		// Owner routes
		owner := authed.Group("")
		owner.Use(utils.RequireRole(models.RoleOwner))
		{
			owner.PUT("/salons/me", controllers.UpdateMySalon)

			services := owner.Group("/services")
			{
				services.POST("", controllers.CreateService)
				services.GET("", controllers.GetServices)
				services.GET("/:id", controllers.GetService)
				services.PUT("/:id", controllers.UpdateService)
				services.DELETE("/:id", controllers.DeleteService)
			}

			owner.GET("/salon/bookings", controllers.GetSalonBookings)
			owner.GET("/salon/reports", controllers.GetSalonReports)
			owner.POST("/salon/reports/:id/resolve", controllers.ResolveReport)

			owner.POST("/payments/onboard", controllers.OnboardAccount)
			owner.GET("/payments/onboard/status", controllers.OnboardStatus)
		}

		// Customer routes
		customer := authed.Group("")
		customer.Use(utils.RequireRole(models.RoleCustomer))
		{
			bookings := customer.Group("/bookings")
			{
				bookings.POST("", controllers.CreateBooking)
				bookings.GET("", controllers.GetMyBookings)
				bookings.POST("/:id/cancel", controllers.CancelBooking)
			}

			reviews := customer.Group("/reviews")
			{
				reviews.POST("", controllers.CreateReview)
				reviews.DELETE("/:id", controllers.DeleteReview)
				reviews.POST("/:id/report", controllers.ReportReview)
			}

			customer.POST("/payments/intent", controllers.CreatePaymentIntent)
		}
	}

	return r
}
