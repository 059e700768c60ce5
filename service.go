package crossfs

import (
	"errors"
	"fmt"

	"github.com/gobeaver/beaver-kit/config"
)

// Builder creates FileSystem instances from the environment with a custom
// variable prefix, e.g. WithPrefix("ARCHIVE_") reads ARCHIVE_CROSSFS_DRIVER.
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// New creates a new FileSystem instance using the builder's prefix
func (b *Builder) New() (FileSystem, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg)
}

// OpenRoot creates a Root using the builder's prefix.
func (b *Builder) OpenRoot(name string) (*Root, error) {
	fs, err := b.New()
	if err != nil {
		return nil, err
	}
	return NewRoot(name, fs), nil
}

// New creates a new file system instance with given config
func New(cfg *Config) (FileSystem, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fs, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return fs, nil
}

// NewFromEnv creates an instance from environment variables
func NewFromEnv() (FileSystem, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// OpenRoot creates a Root named name over the configured driver.
func OpenRoot(name string, cfg *Config) (*Root, error) {
	fs, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return NewRoot(name, fs), nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}

	switch cfg.Driver {
	case "local":
		if cfg.LocalBasePath == "" {
			return errors.New("local base path is required for local driver")
		}
	case "memory":
		// No required settings.
	case "s3":
		if cfg.S3Bucket == "" {
			return errors.New("S3 bucket is required for S3 driver")
		}
		// Access keys can be provided via IAM roles, so not always required
	case "sftp":
		if cfg.SFTPHost == "" {
			return errors.New("SFTP host is required for SFTP driver")
		}
	case "ftp":
		if cfg.FTPHost == "" {
			return errors.New("FTP host is required for FTP driver")
		}
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	return nil
}
