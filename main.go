package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/calderon/shopdesk-api/internal/cache"
	"github.com/calderon/shopdesk-api/internal/config"
	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/handlers"
	"github.com/calderon/shopdesk-api/internal/routes"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		handlers.InitBoardCache(cache.NewBoards(redis.NewClient(opts), 30*time.Second))
		log.Info("board cache enabled")
	}
	handlers.InitShopName(cfg.ShopName)

	app := fiber.New(fiber.Config{
		AppName: "shopdesk-api",
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	routes.Setup(app)

	log.Infof("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
