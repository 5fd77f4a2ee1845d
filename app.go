package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/consensuslabs/festival/backend/internal/cache"
	"github.com/consensuslabs/festival/backend/internal/captcha"
	"github.com/consensuslabs/festival/backend/internal/config"
	"github.com/consensuslabs/festival/backend/internal/database"
	"github.com/consensuslabs/festival/backend/internal/edittoken"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/consensuslabs/festival/backend/internal/storage"
	"github.com/consensuslabs/festival/backend/internal/storage/local"
	"github.com/consensuslabs/festival/backend/internal/storage/s3"
	"github.com/consensuslabs/festival/backend/internal/submission"
	"github.com/consensuslabs/festival/backend/internal/tempfile"
	"github.com/consensuslabs/festival/backend/internal/video"
	"github.com/consensuslabs/festival/backend/internal/video/ffprobe"
	"github.com/consensuslabs/festival/backend/migrations"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App holds all application dependencies
type App struct {
	Config     *config.Config
	db         *gorm.DB
	database   *database.DatabaseService
	cache      cache.Service
	store      storage.ObjectStore
	stager     *tempfile.Manager
	router     *gin.Engine
	submission *submission.Service
	logger     logger.Logger
}

// NewApp creates a new application instance with all dependencies
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &App{Config: cfg, logger: log}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCache(ctx); err != nil {
		return nil, err
	}
	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.router = gin.New()
	app.setupRoutes()

	return app, nil
}

func (a *App) initDatabase() error {
	a.database = database.NewDatabaseService(&a.Config.Database, a.logger)
	db, err := a.database.Connect()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	if a.Config.Database.AutoMigrate {
		opts := migrations.Options{Environment: a.Config.Environment}
		if err := migrations.RunMigrations(db, migrations.Up, opts, a.logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

func (a *App) initCache(ctx context.Context) error {
	if !a.Config.Redis.Enabled {
		a.logger.LogWarn("Redis disabled, using in-process cache", nil)
		a.cache = cache.NewMemoryService()
		return nil
	}
	redisService, err := cache.NewRedisService(ctx, &a.Config.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	a.cache = redisService
	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case storage.DriverS3:
		s3Service, err := s3.NewService(&a.Config.Storage.S3, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 service: %w", err)
		}
		if err := s3Service.EnsureBucket(ctx); err != nil {
			return err
		}
		a.store = s3Service
	default:
		store, err := local.NewStore(a.Config.Storage.UploadDir, a.logger)
		if err != nil {
			return err
		}
		a.store = store
	}

	stager, err := tempfile.NewManager(&tempfile.Config{BaseDir: a.Config.Storage.TempDir}, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize staging: %w", err)
	}
	a.stager = stager
	return nil
}

func (a *App) initServices() error {
	var verifier captcha.Verifier = captcha.AllowAll{}
	if a.Config.Captcha.Enabled {
		verifier = captcha.NewHTTPVerifier(&a.Config.Captcha, &stdhttp.Client{Timeout: a.Config.Captcha.Timeout})
	} else {
		a.logger.LogWarn("Human verification disabled", nil)
	}

	tokens, err := edittoken.NewService(a.db, &a.Config.EditToken, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize edit tokens: %w", err)
	}

	limits := a.Config.Media.Limits()
	prober := ffprobe.NewProber(&a.Config.FFprobe, a.logger)
	a.submission, err = submission.NewService(submission.Dependencies{
		Repository: submission.NewRepository(a.db),
		Verifier:   captcha.NewGuard(verifier, a.cache, a.Config.Captcha.TokenTTL),
		Checker:    media.NewChecker(limits, nil),
		Durations:  video.NewDurationChecker(prober, limits.MaxDuration, a.logger),
		Stager:     a.stager,
		Store:      a.store,
		Tokens:     tokens,
		Logger:     a.logger,
	})
	return err
}

// Run serves HTTP until ctx is canceled
func (a *App) Run(ctx context.Context) error {
	srv := &stdhttp.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.LogInfo(fmt.Sprintf("Starting server on port %d", a.Config.Server.Port), nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.LogInfo("Initiating graceful shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Shutdown releases every held resource
func (a *App) Shutdown() error {
	var errs []error

	if a.stager != nil {
		if err := a.stager.CleanupAll(); err != nil {
			a.logger.LogWarn("Error removing staged uploads", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.LogInfo("Application shutdown complete", nil)
	return nil
}
