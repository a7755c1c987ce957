package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"points-mall/config"
	"points-mall/internal/api"
	"points-mall/internal/broker"
	"points-mall/internal/objectstore"
	"points-mall/internal/redisclient"
	"points-mall/internal/service"
	"points-mall/internal/store"
	"points-mall/internal/util"
	"points-mall/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting points mall service")

	tp, err := util.InitTracer("points-mall", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache and guards: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPoints)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	var objectStore *objectstore.Client
	if cfg.Storage.AccessKey != "" {
		objectStore, err = objectstore.NewClient(&cfg.Storage)
		if err != nil {
			log.Printf("Object store unavailable, image uploads disabled: %v", err)
		}
	}

	catalogTTL := time.Duration(cfg.Business.CatalogCacheTTLSec) * time.Second
	catalogService := service.NewCatalogService(db, redisClient, catalogTTL)
	cartService := service.NewCartService(db, cfg.Business.LargeSizeSurcharge)
	checkoutService := service.NewCheckoutService(db, lockerOrNil(redisClient), eventPublisher)
	couponService := service.NewCouponService(db, eventPublisher)
	pointsService := service.NewPointsService(db, guardOrNil(redisClient), eventPublisher, cfg.Business.CheckinAwardPoints)
	userService := service.NewUserService(db, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPoints, cfg.Kafka.ConsumerGroup)
	membershipWorker := worker.NewMembershipWorker(consumer, db)
	go func() {
		if err := membershipWorker.Start(workerCtx); err != nil {
			log.Printf("Membership worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		catalogService,
		cartService,
		checkoutService,
		couponService,
		pointsService,
		userService,
		objectStore,
		cfg.Server.AllowedOrigins,
		cfg.Business.DemoUserID,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if err := membershipWorker.Close(); err != nil {
		log.Printf("Error closing membership worker: %v", err)
	}

	log.Println("Server exited")
}

// lockerOrNil avoids handing services a typed nil that fails their nil checks
func lockerOrNil(c *redisclient.Client) service.CheckoutLocker {
	if c == nil {
		return nil
	}
	return c
}

func guardOrNil(c *redisclient.Client) service.CheckinGuard {
	if c == nil {
		return nil
	}
	return c
}
