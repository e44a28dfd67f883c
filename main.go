package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/isdelr/starter-web/internal/api"
	"github.com/isdelr/starter-web/internal/auth"
	"github.com/isdelr/starter-web/internal/config"
	"github.com/isdelr/starter-web/internal/database"
	"github.com/isdelr/starter-web/internal/logger"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/isdelr/starter-web/internal/views"
	"github.com/isdelr/starter-web/web"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.DatabaseURL).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up templates
	templates := web.Templates()
	if cfg.TemplateDir != "" {
		templates = os.DirFS(cfg.TemplateDir)
	}
	engine, err := views.New(templates, views.WithReload(cfg.TemplateReload))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}

	var static fs.FS = web.Static()
	if cfg.StaticDir != "" {
		static = os.DirFS(cfg.StaticDir)
	}

	// Set up services
	userService := services.NewUserService(db)
	itemService := services.NewItemService(db)
	issuer := auth.NewIssuer(cfg.SecretKey, cfg.TokenTTL)

	// Set up router
	router := api.NewRouter(api.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		SecureCookies:  cfg.IsProduction(),
		Static:         static,
	}, userService, itemService, engine, issuer, db)

	// Set up server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
