package crossfs

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Driver to use (local, memory, s3, sftp, ftp)
	Driver string `env:"CROSSFS_DRIVER,default:local"`

	// Prefix confines every operation to a subtree of the backend
	Prefix string `env:"CROSSFS_PREFIX"`

	// Local driver configuration
	LocalBasePath string `env:"CROSSFS_LOCAL_BASE_PATH,default:./storage"`

	// S3 driver configuration
	S3Region          string `env:"CROSSFS_S3_REGION,default:us-east-1"`
	S3Bucket          string `env:"CROSSFS_S3_BUCKET"`
	S3Endpoint        string `env:"CROSSFS_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"CROSSFS_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"CROSSFS_S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"CROSSFS_S3_FORCE_PATH_STYLE,default:false"`

	// SFTP driver configuration
	SFTPHost       string `env:"CROSSFS_SFTP_HOST"`
	SFTPPort       int    `env:"CROSSFS_SFTP_PORT,default:22"`
	SFTPUsername   string `env:"CROSSFS_SFTP_USERNAME"`
	SFTPPassword   string `env:"CROSSFS_SFTP_PASSWORD"`
	SFTPPrivateKey string `env:"CROSSFS_SFTP_PRIVATE_KEY"` // Path to private key file
	SFTPBasePath   string `env:"CROSSFS_SFTP_BASE_PATH"`

	// FTP driver configuration
	FTPHost           string `env:"CROSSFS_FTP_HOST"`
	FTPPort           int    `env:"CROSSFS_FTP_PORT,default:21"`
	FTPUsername       string `env:"CROSSFS_FTP_USERNAME,default:anonymous"`
	FTPPassword       string `env:"CROSSFS_FTP_PASSWORD"`
	FTPBasePath       string `env:"CROSSFS_FTP_BASE_PATH"`
	FTPTimeoutSeconds int    `env:"CROSSFS_FTP_TIMEOUT_SECONDS,default:10"`
	FTPRefreshSeconds int    `env:"CROSSFS_FTP_REFRESH_SECONDS,default:60"`

	// Retry policy for network drivers
	RetryAttempts int `env:"CROSSFS_RETRY_ATTEMPTS,default:5"`
	RetryDelayMS  int `env:"CROSSFS_RETRY_DELAY_MS,default:500"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
