package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/application"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/config"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events/consumer"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/handler"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/auth"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/database"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/health"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/logger"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/middleware"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-boarding")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-boarding",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := db.AutoMigrate(
		&repository.ClientModel{},
		&repository.PetModel{},
		&repository.BookingModel{},
		&repository.BoardingDetailModel{},
		&repository.TaxiDetailModel{},
		&repository.BookingPetModel{},
		&repository.InvoiceModel{},
		&repository.InvoiceItemModel{},
		&repository.InvoiceSequenceModel{},
		&repository.GradeModel{},
		&repository.SettingModel{},
		&repository.StayPhotoModel{},
		&repository.AuditEntryModel{},
	); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	clientRepo := repository.NewGormClientRepository(db)
	petRepo := repository.NewGormPetRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	invoiceRepo := repository.NewGormInvoiceRepository(db)
	gradeRepo := repository.NewGormGradeRepository(db)
	settingsRepo := repository.NewGormSettingsRepository(db)
	photoRepo := repository.NewGormPhotoRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)

	// Initialize application services
	settingsService := application.NewSettingsService(settingsRepo, log)
	loyaltyService := application.NewLoyaltyService(gradeRepo, bookingRepo, invoiceRepo, clientRepo, auditRepo, kafkaProducer, log)
	bookingService := application.NewBookingService(bookingRepo, petRepo, clientRepo, settingsService, auditRepo, kafkaProducer, log)
	invoiceService := application.NewInvoiceService(invoiceRepo, bookingRepo, loyaltyService, auditRepo, log)
	petService := application.NewPetService(petRepo, bookingRepo, log)
	clientService := application.NewClientService(clientRepo, auditRepo, jwtManager, log)
	photoService := application.NewPhotoService(photoRepo, bookingRepo, log)
	auditService := application.NewAuditService(auditRepo)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "boarding-service"
	paymentConsumer := consumer.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		invoiceService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	petHandler := handler.NewPetHandler(petService)
	clientHandler := handler.NewClientHandler(clientService, loyaltyService)
	photoHandler := handler.NewPhotoHandler(photoService)
	staffHandler := handler.NewStaffHandler(settingsService, loyaltyService, clientService, auditService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-boarding")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	invoiceHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	petHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	clientHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	photoHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	staffHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-boarding...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-boarding stopped")
}
