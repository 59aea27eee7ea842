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

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/lead-qualifier/internal/auth"
	"github.com/octobees/lead-qualifier/internal/config"
	"github.com/octobees/lead-qualifier/internal/database"
	"github.com/octobees/lead-qualifier/internal/handler"
	middlewarepkg "github.com/octobees/lead-qualifier/internal/middleware"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/router"
	"github.com/octobees/lead-qualifier/internal/service"
	"github.com/octobees/lead-qualifier/internal/service/jobchange"
	"github.com/octobees/lead-qualifier/internal/service/playlist"
	"github.com/octobees/lead-qualifier/internal/service/scoring"
	"github.com/octobees/lead-qualifier/internal/service/technographics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	leadsRepo := repository.NewPGXLeadsRepository(pool)
	contactsRepo := repository.NewPGXContactsRepository(pool)
	playlistsRepo := repository.NewPGXPlaylistsRepository(pool)

	weights := scoring.Weights{
		CompanySize:     cfg.Weights.CompanySize,
		DigitalMaturity: cfg.Weights.DigitalMaturity,
		CloudUsage:      cfg.Weights.CloudUsage,
		SectorFit:       cfg.Weights.SectorFit,
	}
	validator := service.NewContactValidator(cfg.PhoneRegion)
	enricher := technographics.NewEnricher(technographics.NewInspector(nil))

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	leadsService := service.NewLeadsService(leadsRepo, enricher, validator, weights)
	playlistService := playlist.NewService(playlistsRepo, leadsRepo)

	profileSource := jobchange.NewHTTPProfileSource(nil, cfg.ProfileBaseURL)
	monitor := jobchange.NewMonitor(contactsRepo, profileSource, cfg.JobChange)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserAdminHandler(userService),
		Leads:       handler.NewLeadsHandler(leadsService),
		AdminUpload: handler.NewAdminUploadHandler(leadsService),
		Playlists:   handler.NewPlaylistsHandler(playlistService),
		JobChange:   handler.NewJobChangeHandler(monitor),
		CRMSync:     handler.NewCRMSyncHandler(leadsService, nil, cfg.CRMBaseURL),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go playlistService.Run(backgroundCtx, cfg.RefreshEvery)
	go monitor.Run(backgroundCtx, cfg.JobChange.CycleEvery)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	stopBackground()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
