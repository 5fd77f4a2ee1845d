package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/encode"
	"github.com/consensuslabs/festival/backend/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FESTIVAL_SERVER_PORT.
const EnvPrefix = "FESTIVAL"

// ConfigService implements the Service interface
type ConfigService struct {
	logger Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(logger Logger) *ConfigService {
	return &ConfigService{
		logger: logger,
	}
}

// Load loads the configuration from the specified path
func (s *ConfigService) Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	// Use test configuration file if ENV is set to test
	if os.Getenv("ENV") == "test" {
		v.SetConfigName("config_test")
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := resolveStoragePaths(&config, path); err != nil {
		return nil, fmt.Errorf("failed to resolve storage paths: %w", err)
	}

	s.logger.LogInfo("Configuration loaded successfully", map[string]interface{}{
		"environment": config.Environment,
		"file":        v.ConfigFileUsed(),
	})
	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.maxRequestBytes", 256<<20)
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.slowThreshold", 200*time.Millisecond)
	v.SetDefault("database.pool.maxOpen", 25)
	v.SetDefault("database.pool.maxIdle", 5)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "festival:")
	v.SetDefault("storage.driver", storage.DriverLocal)
	v.SetDefault("storage.uploadDir", "uploads")
	v.SetDefault("storage.tempDir", "temp")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.service", "festival")
	v.SetDefault("ffprobe.path", "ffprobe")
	v.SetDefault("ffprobe.timeout", 30*time.Second)
	v.SetDefault("media.maxVideoMB", 200)
	v.SetDefault("media.maxCoverMB", 15)
	v.SetDefault("media.maxStillMB", 7)
	v.SetDefault("media.maxSubtitleMB", 1)
	v.SetDefault("media.maxDuration", 150)
	v.SetDefault("media.maxStills", 3)
	v.SetDefault("captcha.enabled", true)
	v.SetDefault("captcha.tokenTTL", 5*time.Minute)
	v.SetDefault("captcha.timeout", 10*time.Second)
	v.SetDefault("editToken.ttl", 7*24*time.Hour)
	v.SetDefault("client.baseURL", "http://localhost:8080")
	v.SetDefault("client.arrayMode", "bracketed")
	v.SetDefault("client.timeout", 5*time.Minute)
}

// validate performs validation on the configuration
func validate(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("invalid server port")
	}

	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if config.Database.Dbname == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Port <= 0 {
			return fmt.Errorf("invalid database port")
		}
	case DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	switch config.Storage.Driver {
	case storage.DriverLocal:
	case storage.DriverS3:
		if config.Storage.S3.Endpoint == "" || config.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.EditToken.Secret == "" {
		return fmt.Errorf("edit token secret is required")
	}
	if config.Captcha.Enabled && config.Captcha.Secret == "" {
		return fmt.Errorf("captcha secret is required when captcha is enabled")
	}
	if config.Media.MaxDuration <= 0 || config.Media.MaxStills <= 0 {
		return fmt.Errorf("media maxDuration and maxStills must be positive")
	}
	if _, err := encode.ParseArrayMode(config.Client.ArrayMode); err != nil {
		return err
	}

	return nil
}

// resolveStoragePaths converts relative paths to absolute paths
func resolveStoragePaths(config *Config, basePath string) error {
	for _, dir := range []*string{&config.Storage.UploadDir, &config.Storage.TempDir} {
		if filepath.IsAbs(*dir) {
			continue
		}
		absPath, err := filepath.Abs(filepath.Join(basePath, *dir))
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", *dir, err)
		}
		*dir = absPath
	}
	return nil
}
