package storage

// Drivers accepted in Config.Driver.
const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// Config represents storage configuration
type Config struct {
	Driver    string   `mapstructure:"driver"`
	UploadDir string   `mapstructure:"uploadDir"`
	TempDir   string   `mapstructure:"tempDir"`
	S3        S3Config `mapstructure:"s3"`
}

// S3Config represents S3 configuration settings
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	UseSSL          bool   `mapstructure:"useSSL"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
}
