package config

import (
	"time"

	"github.com/consensuslabs/festival/backend/internal/cache"
	"github.com/consensuslabs/festival/backend/internal/captcha"
	"github.com/consensuslabs/festival/backend/internal/edittoken"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/consensuslabs/festival/backend/internal/storage"
	"github.com/consensuslabs/festival/backend/internal/video/ffprobe"
)

// Config represents the application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       cache.Config     `mapstructure:"redis"`
	Storage     storage.Config   `mapstructure:"storage"`
	Logging     logger.Config    `mapstructure:"logging"`
	FFprobe     ffprobe.Config   `mapstructure:"ffprobe"`
	Media       MediaConfig      `mapstructure:"media"`
	Captcha     captcha.Config   `mapstructure:"captcha"`
	EditToken   edittoken.Config `mapstructure:"editToken"`
	Client      ClientConfig     `mapstructure:"client"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// MaxRequestBytes caps the multipart body of a single submission
	MaxRequestBytes int64 `mapstructure:"maxRequestBytes"`
}

// Database drivers accepted in DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig represents database configuration settings
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	Sslmode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`
	// Path is the database file for the sqlite driver
	Path          string        `mapstructure:"path"`
	AutoMigrate   bool          `mapstructure:"autoMigrate"`
	SlowThreshold time.Duration `mapstructure:"slowThreshold"`
	Pool          struct {
		MaxOpen int `mapstructure:"maxOpen"`
		MaxIdle int `mapstructure:"maxIdle"`
	} `mapstructure:"pool"`
}

// MediaConfig holds the upload ceilings enforced by the server
type MediaConfig struct {
	MaxVideoMB    int64   `mapstructure:"maxVideoMB"`
	MaxCoverMB    int64   `mapstructure:"maxCoverMB"`
	MaxStillMB    int64   `mapstructure:"maxStillMB"`
	MaxSubtitleMB int64   `mapstructure:"maxSubtitleMB"`
	MaxDuration   float64 `mapstructure:"maxDuration"`
	MaxStills     int     `mapstructure:"maxStills"`
}

// Limits converts the ceilings to media.Limits.
func (m MediaConfig) Limits() media.Limits {
	const mib = 1 << 20
	return media.Limits{
		MaxVideoBytes:    m.MaxVideoMB * mib,
		MaxCoverBytes:    m.MaxCoverMB * mib,
		MaxStillBytes:    m.MaxStillMB * mib,
		MaxSubtitleBytes: m.MaxSubtitleMB * mib,
		MaxDuration:      m.MaxDuration,
		MaxStills:        m.MaxStills,
	}
}

// ClientConfig configures festivalctl when it submits drafts
type ClientConfig struct {
	BaseURL   string        `mapstructure:"baseURL"`
	ArrayMode string        `mapstructure:"arrayMode"`
	DeviceID  string        `mapstructure:"deviceId"`
	Timeout   time.Duration `mapstructure:"timeout"`
}
