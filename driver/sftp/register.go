package sftp

import (
	"fmt"
	"os"
	"time"

	"github.com/crossfs/crossfs"
)

func init() {
	crossfs.RegisterDriver("sftp", func(cfg *crossfs.Config) (crossfs.FileSystem, error) {
		if cfg.SFTPHost == "" {
			return nil, fmt.Errorf("SFTP host is required")
		}

		sftpConfig := Config{
			Host:          cfg.SFTPHost,
			Port:          cfg.SFTPPort,
			Username:      cfg.SFTPUsername,
			Password:      cfg.SFTPPassword,
			BasePath:      cfg.SFTPBasePath,
			RetryAttempts: cfg.RetryAttempts,
			RetryDelay:    time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		}

		// Load private key if specified
		if cfg.SFTPPrivateKey != "" {
			keyData, err := os.ReadFile(cfg.SFTPPrivateKey)
			if err != nil {
				return nil, fmt.Errorf("failed to read private key: %w", err)
			}
			sftpConfig.PrivateKey = keyData
		}

		return New(sftpConfig)
	})
}
