package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/auth"
	config "github.com/anjiri1684/tutor_hunt/configs"
	"github.com/anjiri1684/tutor_hunt/database"
	"github.com/anjiri1684/tutor_hunt/handlers"
	"github.com/anjiri1684/tutor_hunt/jobs"
	"github.com/anjiri1684/tutor_hunt/middleware"
	"github.com/anjiri1684/tutor_hunt/notifications"
	"github.com/anjiri1684/tutor_hunt/routes"
	"github.com/anjiri1684/tutor_hunt/services"
	"github.com/anjiri1684/tutor_hunt/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	settings := config.Load()
	if settings.JWTSecret == "" {
		log.Fatal("🔥 ACCESS_TOKEN_SECRET is not set")
	}

	store, err := database.OpenStore(context.Background(), settings)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	redisClient := database.ConnectRedis(context.Background(), settings)
	mailer := notifications.NewBrevoService(settings.BrevoAPIKey, settings.EmailSender, settings.EmailSenderName)

	hub := websocket.NewHub()
	go hub.Run()

	tokens := auth.NewTokenService(settings.JWTSecret)
	stats := services.NewStatsService(store, redisClient, hub, settings.StatsTTL)
	var notifier services.BookingNotifier
	if mailer != nil {
		notifier = mailer
	}
	bookings := services.NewBookingService(store, notifier, stats)

	uploads, err := handlers.NewUploadHandler(settings.CloudinaryURL, settings.UploadFolder)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if uploads == nil {
		log.Println("⚠️ CLOUDINARY_URL not set, image upload signatures disabled.")
	}

	c := cron.New()
	reconciler := jobs.NewReviewReconciler(store, stats, settings.DBTimeout*3)
	if _, err := reconciler.Schedule(c, settings.ReconcileCron); err != nil {
		log.Fatalf("🔥 Invalid RECONCILE_CRON %q: %v", settings.ReconcileCron, err)
	}
	c.Start()
	log.Println("✅ Cron job for review reconciliation scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:      "TutorHunt",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: apperrors.FiberErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     settings.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
		MaxAge:           86400,
	}))
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	limiter := middleware.NewRateLimiter(settings.RateLimitRPS, settings.RateLimitBurst)
	routes.Register(app, routes.Handlers{
		Health:   handlers.NewHealthHandler(store, settings.DBTimeout),
		Stats:    handlers.NewStatsHandler(stats, settings.DBTimeout),
		Auth:     handlers.NewAuthHandler(tokens, settings.IsProduction()),
		Tutors:   handlers.NewTutorHandler(store, stats, settings.DBTimeout),
		Bookings: handlers.NewBookingHandler(bookings, settings.DBTimeout),
		Uploads:  uploads,
		Live:     handlers.NewLiveHandler(hub, stats, settings.DBTimeout),
	}, routes.Guards{
		Protected: middleware.Protected(tokens),
		Limit:     limiter.Limit(),
	})

	go func() {
		log.Printf("✅ Server is running on port %s", settings.Port)
		if err := app.Listen(":" + settings.Port); err != nil {
			log.Fatalf("🔥 Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	<-c.Stop().Done()
	hub.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("🔥 Server shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Printf("🔥 Closing store: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("🔥 Closing Redis: %v", err)
	}
	log.Println("✅ Shutdown complete")
}
