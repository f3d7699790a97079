package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cylink/auth"
	"cylink/config"
	"cylink/database"
	"cylink/handlers"
	"cylink/logger"
	"cylink/maintenance"
	"cylink/repository"
	"cylink/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	auth.Init(cfg.JWTSecret)
	if err := logger.Init(cfg.Env == "development"); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	db, err := database.Connect(&cfg.DB, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	linkRepo := repository.NewShortLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	impressionRepo := repository.NewImpressionRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	conversionRepo := repository.NewConversionRepository(db)

	linkService := services.NewLinkService(linkRepo, log)
	clickService := services.NewClickService(clickRepo, linkService, log)
	impressionService := services.NewImpressionService(impressionRepo, log)
	goalService := services.NewGoalService(goalRepo, conversionRepo, log)
	conversionService := services.NewConversionService(&cfg.App, log)

	authHandler := handlers.NewAuthHandler(userRepo)
	linkHandler := handlers.NewLinkHandler(linkService, clickRepo, impressionService)
	goalHandler := handlers.NewGoalHandler(goalService, linkService)
	conversionHandler := handlers.NewConversionHandler(goalService)
	redirectHandler := handlers.NewRedirectHandler(
		clickService, linkService, impressionService, goalService, conversionService, log)

	router := buildRouter(authHandler, linkHandler, goalHandler, conversionHandler, redirectHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := maintenance.NewScheduler(linkRepo, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("failed to start maintenance scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		log.Info("cylink starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	database.Close(db, log)
	log.Info("server exiting")
}

// buildRouter registers the explicit API surface first; the redirect
// orchestrator hangs off NoRoute so it only sees paths no API route claimed.
func buildRouter(authHandler *handlers.AuthHandler, linkHandler *handlers.LinkHandler,
	goalHandler *handlers.GoalHandler, conversionHandler *handlers.ConversionHandler,
	redirectHandler *handlers.RedirectHandler) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/register", authHandler.Register)
	router.POST("/api/login", authHandler.Login)
	router.POST("/api/v1/conversions", conversionHandler.Record)

	api := router.Group("/api")
	api.POST("/links", auth.OptionalAuthMiddleware(), linkHandler.Create)

	protected := api.Group("", auth.AuthMiddleware())
	{
		protected.GET("/links/:code", linkHandler.Info)
		protected.GET("/links/:code/stats", linkHandler.Stats)
		protected.DELETE("/links/:code", linkHandler.Delete)
		protected.POST("/links/:code/goals", goalHandler.Create)
	}

	router.NoRoute(redirectHandler.Redirect)

	return router
}
