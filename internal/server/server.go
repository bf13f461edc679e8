package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/farellandr/thm-registration/config"
	"github.com/farellandr/thm-registration/internal/handlers"
	"github.com/farellandr/thm-registration/internal/imagestore"
	"github.com/farellandr/thm-registration/internal/intake"
	"github.com/farellandr/thm-registration/internal/logger"
	"github.com/farellandr/thm-registration/internal/middleware"
	"github.com/farellandr/thm-registration/internal/sheets"
	"github.com/farellandr/thm-registration/internal/store"
	"github.com/farellandr/thm-registration/internal/ticketid"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	log := logger.New(cfg.Env)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}
	registrations := store.NewRegistrationStore(db)
	defer func() {
		if err := registrations.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	err = registrations.Ping(pingCtx)
	cancelPing()
	if err != nil {
		return fmt.Errorf("failed to reach database: %v", err)
	}
	if err := registrations.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")

	mirror, err := newMirror(cfg, log)
	if err != nil {
		return err
	}
	mirror.Start()

	if cfg.ImgBBAPIKey == "" {
		log.Warn().Msg("IMGBB_API_KEY is not set, screenshot uploads will be rejected by the image host")
	}
	images := imagestore.NewClient(cfg.ImageStore())

	pipeline := intake.New(registrations, images, ticketid.Generator{}, mirror, log, intake.WithStoreTimeout(cfg.StoreTimeout))

	if cfg.Env != "development" && cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := NewRouter(cfg, log, pipeline)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := mirror.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("sheet mirror did not drain before shutdown")
	}
	log.Info().Msg("shutdown complete")
	return runErr
}

func newMirror(cfg *config.Config, log zerolog.Logger) (*sheets.Mirror, error) {
	googleCfg := cfg.Sheets()
	if !googleCfg.Configured() {
		return sheets.NewMirror(nil, log, cfg.MirrorOptions()), nil
	}

	appender, err := sheets.NewGoogleAppender(context.Background(), googleCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SheetsTimeout)
	defer cancel()
	if err := appender.EnsureHeader(ctx); err != nil {
		log.Warn().Err(err).Msg("could not verify sheet header row")
	}

	return sheets.NewMirror(appender, log, cfg.MirrorOptions()), nil
}

// NewRouter builds the engine with every route and middleware the service
// answers with.
func NewRouter(cfg *config.Config, log zerolog.Logger, pipeline *intake.Pipeline) *gin.Engine {
	r := gin.New()
	setupRoutes(r, cfg, log, pipeline)
	return r
}

func setupRoutes(r *gin.Engine, cfg *config.Config, log zerolog.Logger, pipeline *intake.Pipeline) {
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middleware.IntakeMiddleware(pipeline))

	r.NoRoute(handlers.NotFound)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	api := r.Group("/api", middleware.RateLimit(limiter))
	{
		api.GET("/health", handlers.Health)
		api.GET("/registration/:id", handlers.GetRegistration)
		api.POST("/register", middleware.LimitBody(cfg.MaxUploadBytes), handlers.Register)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
