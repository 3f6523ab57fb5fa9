package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/smartcanteen/canteen-app/config"
	"github.com/smartcanteen/canteen-app/middlewares"
	"github.com/smartcanteen/canteen-app/models"
	"github.com/smartcanteen/canteen-app/router"
	"github.com/smartcanteen/canteen-app/services"
	"github.com/smartcanteen/canteen-app/utils"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := config.LoadConfig()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Order events go to RabbitMQ when a broker is configured; otherwise
	// the service runs standalone and clients poll for status.
	var events services.OrderEventPublisher = services.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := services.NewAMQPPublisher(cfg.RabbitMQURL, cfg.OrderQueue)
		if err != nil {
			utils.ErrorLogger.Printf("RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			events = pub
			defer pub.Close()
			utils.InfoLogger.Printf("Publishing order events to queue %s", cfg.OrderQueue)
		}
	}

	var cache *services.MenuCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = services.NewMenuCache(client, time.Duration(cfg.MenuCacheTTL)*time.Second)
		utils.InfoLogger.Printf("Menu cache enabled via redis at %s", cfg.RedisAddr)
	}

	// 50 requests per second per IP across the whole API
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r := router.SetupRouter(db, cfg, events, cache, rateLimiter)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
