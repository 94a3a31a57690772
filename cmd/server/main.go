package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/film-rental-service/internal/config"
	"github.com/iliyamo/film-rental-service/internal/database"
	"github.com/iliyamo/film-rental-service/internal/handler"
	"github.com/iliyamo/film-rental-service/internal/middleware"
	"github.com/iliyamo/film-rental-service/internal/queue"
	"github.com/iliyamo/film-rental-service/internal/repository"
	"github.com/iliyamo/film-rental-service/internal/router"
	queuepublisher "github.com/iliyamo/film-rental-service/internal/service"
)

func main() {
	// Load a local .env when present; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	// Repositories share the single pooled handle.
	filmRepo := repository.NewFilmRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	rentalRepo := repository.NewRentalRepo(db)
	staffRepo := repository.NewStaffRepo(db)

	rentalHandler := handler.NewRentalHandler(rentalRepo, customerRepo, staffRepo)
	rentalHandler.PublishCreated = queuepublisher.PublishRentalCreated
	rentalHandler.PublishReturned = queuepublisher.PublishRentalReturned

	h := router.Handlers{
		Catalog:  handler.NewCatalogHandler(filmRepo),
		Stock:    handler.NewStockHandler(inventoryRepo),
		Customer: handler.NewCustomerHandler(customerRepo, rentalRepo),
		Rental:   rentalHandler,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Rate limiting degrades to a pass-through when Redis is absent.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, h)

	// Background consumer mirrors rental events into logs/rental.log.
	go func() {
		if err := queue.StartRentalConsumer(); err != nil {
			log.Printf("rental consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
