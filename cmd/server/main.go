package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quocanhngo/agrosynth/internal/config"
	"github.com/quocanhngo/agrosynth/internal/handler"
	"github.com/quocanhngo/agrosynth/internal/middleware"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/observability"
	"github.com/quocanhngo/agrosynth/internal/repository"
	"github.com/quocanhngo/agrosynth/internal/service"
	"github.com/quocanhngo/agrosynth/internal/ws"
	"github.com/quocanhngo/agrosynth/migrations"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
	"github.com/quocanhngo/agrosynth/pkg/mailer"
	"github.com/quocanhngo/agrosynth/pkg/storage"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           AgroSynth Weather Alerts API
// @version         1.0
// @description     Crowd-sourced weather alerts with map overlays, photo upload and a live feed.

// @contact.name   API Support
// @contact.email  support@agrosynth.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey DeviceID
// @in header
// @name X-Device-ID

func main() {
	rollback := flag.Bool("rollback", false, "revert the last migration and exit")
	flag.Parse()

	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting AgroSynth API Server [env=%s]", cfg.App.Env)

	if *rollback {
		if err := migrations.Rollback(cfg.DB.URL()); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(&model.AlertRecord{}, &model.Subscription{}); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	// Redis carries the live feed between instances and caches geocoding.
	// Without it a single instance still works on in-process fallbacks.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	var (
		pubsub       ws.PubSub
		geocodeCache geocode.Cache
	)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Printf("⚠️  Redis not available: %v (live feed limited to this instance)", err)
		_ = rdb.Close()
		pubsub = ws.NewLocalPubSub()
		geocodeCache = geocode.NewMemoryCache(cfg.Geocode.CacheTTL)
	} else {
		log.Println("✅ Connected to Redis")
		pubsub = ws.NewRedisPubSub(rdb)
		geocodeCache = geocode.NewRedisCache(rdb, cfg.Geocode.CacheTTL)
	}
	pingCancel()

	// ==================== Email (SMTP / Mailpit) ====================
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	log.Printf("📧 SMTP configured: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	// ==================== Initialize Layers ====================
	metrics := observability.NewMetrics()

	// Repositories
	alertRepo := repository.NewAlertRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// WebSocket Hub (with Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(pubsub, metrics)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Services
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, mailClient)
	alertService := service.NewAlertService(alertRepo, clockwork.NewRealClock(), hub, subscriptionService, metrics)

	// Reverse geocoding
	nominatim := geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:     cfg.Geocode.BaseURL,
		ProxyPrefix: cfg.Geocode.ProxyPrefix,
		UserAgent:   cfg.Geocode.UserAgent,
		Timeout:     cfg.Geocode.Timeout,
		RatePerSec:  cfg.Geocode.RatePerSec,
	}, metrics)
	reverser := geocode.NewCached(nominatim, geocodeCache, metrics)
	log.Printf("📡 Reverse geocoding via %s", cfg.Geocode.BaseURL)

	// MinIO Storage
	var imageStore storage.ImageStore
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	}, clockwork.NewRealClock())
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (image upload disabled)", err)
	} else {
		imageStore = minioStorage
		log.Println("✅ Connected to MinIO")
	}

	// Handlers
	alertHandler := handler.NewAlertHandler(alertService)
	mapHandler := handler.NewMapHandler(alertService, cfg.Map.OWMAPIKey)
	geocodeHandler := handler.NewGeocodeHandler(reverser)
	uploadHandler := handler.NewUploadHandler(imageStore, metrics)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	wsHandler := handler.NewWSHandler(hub)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     "agrosynth-api",
			"time":        time.Now().Format(time.RFC3339),
			"connections": hub.ConnectionCount(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Public reads; a device id is optional
		public := api.Group("")
		public.Use(middleware.DeviceMiddleware(false))
		{
			public.GET("/alerts", alertHandler.ListAlerts)
			public.GET("/alerts/:id", alertHandler.GetAlert)
			public.GET("/geocode/reverse", geocodeHandler.Reverse)

			mapGroup := public.Group("/map")
			{
				mapGroup.GET("/markers", mapHandler.Markers)
				mapGroup.GET("/icons", mapHandler.Icons)
				mapGroup.GET("/heatmap", mapHandler.Heatmap)
				mapGroup.GET("/polygons", mapHandler.Polygons)
				mapGroup.GET("/tiles", mapHandler.Tiles)
				mapGroup.GET("/windy", mapHandler.Windy)
				mapGroup.GET("/navigation", mapHandler.Navigation)
			}
		}

		// Device-scoped routes
		device := api.Group("")
		device.Use(middleware.DeviceMiddleware(true))
		{
			device.POST("/alerts", alertHandler.CreateAlert)
			device.DELETE("/alerts/:id", alertHandler.DeleteAlert)
			device.GET("/device/alerts", alertHandler.ListDeviceAlerts)
			device.POST("/upload", uploadHandler.UploadImage)
			device.POST("/subscriptions", subscriptionHandler.Subscribe)
		}
	}

	// Live alert feed
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 AgroSynth API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 WebSocket: ws://0.0.0.0:%s/ws?device_id=<id>", cfg.App.Port)
	log.Printf("📈 Metrics: http://0.0.0.0:%s/metrics", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	subscriptionService.Wait()
	log.Println("✅ Server exited gracefully")
}
