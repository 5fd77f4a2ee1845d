package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/consensuslabs/festival/backend/internal/config"
	"github.com/consensuslabs/festival/backend/internal/database"
	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/encode"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/intake/transport"
	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/consensuslabs/festival/backend/internal/video"
	"github.com/consensuslabs/festival/backend/internal/video/ffprobe"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type commandContext struct {
	configDir *string
	envFile   *string

	configOnce sync.Once
	config     *config.Config
	logger     logger.Logger
	configErr  error
}

func newCommandContext(configDir, envFile *string) *commandContext {
	return &commandContext{configDir: configDir, envFile: envFile}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if path := strings.TrimSpace(*c.envFile); path != "" {
			if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				c.configErr = fmt.Errorf("load %s: %w", path, err)
				return
			}
		}

		bootLogger, err := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Format: "console", Output: "stderr"})
		if err != nil {
			c.configErr = err
			return
		}
		cfg, err := config.NewConfigService(bootLogger).Load(strings.TrimSpace(*c.configDir))
		if err != nil {
			c.configErr = err
			return
		}

		logCfg := cfg.Logging
		if logCfg.Output == "" || logCfg.Output == "stdout" {
			// stdout carries command output
			logCfg.Output = "stderr"
		}
		log, err := logger.NewLogger(&logCfg)
		if err != nil {
			c.configErr = err
			return
		}
		c.config, c.logger = cfg, log
	})
	return c.config, c.configErr
}

// openDatabase connects with the configured driver. The returned func
// closes the connection.
func (c *commandContext) openDatabase() (*gorm.DB, func(), error) {
	svc := database.NewDatabaseService(&c.config.Database, c.logger)
	db, err := svc.Connect()
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := svc.Close(); err != nil {
			c.logger.LogError(err, "Failed to close database")
		}
	}, nil
}

// newClient builds the API client from the client section.
func (c *commandContext) newClient() (*transport.Client, error) {
	mode, err := encode.ParseArrayMode(c.config.Client.ArrayMode)
	if err != nil {
		return nil, err
	}
	return transport.New(transport.Config{
		BaseURL:    c.config.Client.BaseURL,
		HTTPClient: &http.Client{Timeout: c.config.Client.Timeout},
		Encoder:    encode.New(encode.Options{ArrayMode: mode}),
		Devices:    transport.StaticDevice(c.config.Client.DeviceID),
		Logger:     c.logger,
	})
}

// newController creates a draft controller whose video checks run ffprobe
// on the local file.
func (c *commandContext) newController() *draft.Controller {
	limits := c.config.Media.Limits()
	prober := ffprobe.NewProber(&c.config.FFprobe, c.logger)
	durations := video.NewDurationChecker(prober, limits.MaxDuration, c.logger)

	return draft.New(draft.Config{
		Checker:  media.NewChecker(limits, media.PathDurationReader{Probe: probeDuration(durations)}),
		TokenTTL: c.config.Captcha.TokenTTL,
		Logger:   c.logger,
	})
}

// probeDuration reports the probed duration even when it is over the
// ceiling; the media checker owns that rejection.
func probeDuration(d *video.DurationChecker) media.ProbeFunc {
	return func(ctx context.Context, path string) (float64, error) {
		check := d.Check(ctx, path)
		if check.Duration > 0 {
			return check.Duration, nil
		}
		return 0, errors.New(check.Error)
	}
}
