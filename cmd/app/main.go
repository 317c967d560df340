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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nftclicks-backend/internal/common/cache"
	"nftclicks-backend/internal/common/config"
	"nftclicks-backend/internal/common/logger"
	"nftclicks-backend/internal/common/middleware"
	adminHTTP "nftclicks-backend/internal/features/admin/delivery/http"
	adminService "nftclicks-backend/internal/features/admin/service"
	paymentHTTP "nftclicks-backend/internal/features/payment/delivery/http"
	paymentRepo "nftclicks-backend/internal/features/payment/repository/postgres"
	paymentService "nftclicks-backend/internal/features/payment/service"
	qrHTTP "nftclicks-backend/internal/features/qr/delivery/http"
	qrRepo "nftclicks-backend/internal/features/qr/repository/postgres"
	qrService "nftclicks-backend/internal/features/qr/service"
	referralService "nftclicks-backend/internal/features/referral/service"
	userHTTP "nftclicks-backend/internal/features/user/delivery/http"
	userRepo "nftclicks-backend/internal/features/user/repository/postgres"
	userService "nftclicks-backend/internal/features/user/service"
	withdrawalHTTP "nftclicks-backend/internal/features/withdrawal/delivery/http"
	withdrawalRepo "nftclicks-backend/internal/features/withdrawal/repository/postgres"
	withdrawalService "nftclicks-backend/internal/features/withdrawal/service"
	"nftclicks-backend/internal/platform/postgres"
	"nftclicks-backend/internal/platform/redis"
	"nftclicks-backend/internal/workers"
)

// @title           NFT Clicks API
// @version         1.0
// @description     Referral commission platform: accounts, wallet ledger, payment activation and withdrawals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name auth
// @tag.description Registration and login

// @tag.name users
// @tag.description Profile, downlines, bank details and upload credits

// @tag.name payments
// @tag.description Gateway webhook and plan activation

// @tag.name withdrawals
// @tag.description Withdrawal requests and history

// @tag.name qr
// @tag.description UPI payment QR codes

// @tag.name admin
// @tag.description Admin panel: stats, settlements, global credits

func main() {
	cfg := config.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	logger.Init("nftclicks-backend", cfg.Debug)

	zapLogger.Info("Starting NFT Clicks Backend",
		zap.String("version", "1.0.0"),
		zap.Bool("debug", cfg.Debug),
	)

	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgresClient.Close()

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	cacheService := cache.NewCacheService(redisClient)
	zapLogger.Info("Cache service initialized")

	userRepository := userRepo.NewPostgresRepository(postgresClient.GetDB())
	paymentRepository := paymentRepo.NewPostgresRepository(postgresClient.GetDB())
	withdrawalRepository := withdrawalRepo.NewPostgresRepository(postgresClient.GetDB())
	qrRepository := qrRepo.NewPostgresRepository(postgresClient.GetDB())

	zapLogger.Info("Repositories initialized")

	walker := referralService.NewWalker(userRepository, zapLogger)

	userSvc := userService.NewUserService(userRepository, cfg, zapLogger)
	paymentSvc := paymentService.NewPaymentService(paymentRepository, userRepository, walker, cfg, zapLogger)
	withdrawalSvc := withdrawalService.NewWithdrawalService(withdrawalRepository, userRepository, cfg, zapLogger)
	adminSvc := adminService.NewAdminService(userRepository, withdrawalRepository, cacheService, cfg, zapLogger)
	qrSvc := qrService.NewQRService(qrRepository, cacheService, zapLogger)

	zapLogger.Info("Services initialized")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(zapLogger))
	router.Use(middleware.HandleErrors(zapLogger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	zapLogger.Info("Middleware configured")

	v1 := router.Group("/api/v1")
	userHTTP.NewUserHandler(userSvc, cfg).RegisterRoutes(v1)
	paymentHTTP.NewPaymentHandler(paymentSvc, cfg).RegisterRoutes(v1)
	withdrawalHTTP.NewWithdrawalHandler(withdrawalSvc, cfg).RegisterRoutes(v1)
	adminHTTP.NewAdminHandler(adminSvc, cfg).RegisterRoutes(v1)
	qrHTTP.NewQRHandler(qrSvc, cfg).RegisterRoutes(v1)

	registerProbes(router, postgresClient, redisClient)

	zapLogger.Info("Routes configured")

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	quotaWorker := workers.NewQuotaResetWorker(userSvc)
	if err := quotaWorker.Start(workerCtx); err != nil {
		zapLogger.Fatal("Failed to start quota reset worker", zap.Error(err))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	quotaWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerProbes(router *gin.Engine, postgresClient *postgres.Client, redisClient *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "nftclicks-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "nftclicks-backend",
		})
	})
}
