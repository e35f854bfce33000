package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mfedotov/shop_backend/internal/config"
	"github.com/mfedotov/shop_backend/internal/db"
	"github.com/mfedotov/shop_backend/internal/es"
	"github.com/mfedotov/shop_backend/internal/handlers"
	"github.com/mfedotov/shop_backend/internal/hash"
	"github.com/mfedotov/shop_backend/internal/logging"
	loggingmw "github.com/mfedotov/shop_backend/internal/middleware/logging"
	"github.com/mfedotov/shop_backend/internal/mykafka"
	"github.com/mfedotov/shop_backend/internal/repo"
	"github.com/mfedotov/shop_backend/internal/service"
	"github.com/mfedotov/shop_backend/internal/tokens"
	httpserver "github.com/mfedotov/shop_backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	database, err := db.Open(ctx, configuration.DatabaseDSN())
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	codec := tokens.NewCodec(
		[]byte(configuration.JWT_SECRET),
		[]byte(configuration.REFRESH_SECRET),
		configuration.TOKEN_ISSUER,
	)

	store := repo.New(database)
	authSvc := &service.AuthService{Repo: store, Hasher: hash.Bcrypt{}, Codec: codec}
	cartSvc := &service.CartService{Repo: store}
	orderSvc := &service.OrderService{Repo: store}

	deps := httpserver.Deps{
		Codec:          codec,
		AuthHandler:    &handlers.AuthHandler{Auth: authSvc, Producer: producer},
		CartHandler:    &handlers.CartHandler{Cart: cartSvc, Producer: producer},
		OrderHandler:   &handlers.OrderHandler{Orders: orderSvc, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Repo: store},
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration, logger)
		if err != nil {
			logger.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: "products"}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", configuration.PORT)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
