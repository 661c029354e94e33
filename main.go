package main

import (
	"fmt"
	"log"
	"os"
	"salonhub-backend/config"
	"salonhub-backend/controllers"
	"salonhub-backend/models"
	"salonhub-backend/routes"
	"salonhub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.InitLogger()
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Salon{},
		&models.Service{},
		&models.Booking{},
		&models.Payment{},
		&models.StripeAccount{},
		&models.Review{},
		&models.ReviewReport{},
		&models.WebhookEvent{},
	)
}

func main() {
	controllers.Setup()

	sweeper := services.NewSweeperService(config.DB, services.NewModerationService(config.DB))
	sweeper.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
