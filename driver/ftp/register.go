package ftp

import (
	"fmt"
	"time"

	"github.com/crossfs/crossfs"
)

func init() {
	crossfs.RegisterDriver("ftp", func(cfg *crossfs.Config) (crossfs.FileSystem, error) {
		if cfg.FTPHost == "" {
			return nil, fmt.Errorf("FTP host is required")
		}

		return New(Config{
			Host:          cfg.FTPHost,
			Port:          cfg.FTPPort,
			Username:      cfg.FTPUsername,
			Password:      cfg.FTPPassword,
			BasePath:      cfg.FTPBasePath,
			Timeout:       time.Duration(cfg.FTPTimeoutSeconds) * time.Second,
			Refresh:       time.Duration(cfg.FTPRefreshSeconds) * time.Second,
			RetryAttempts: cfg.RetryAttempts,
			RetryDelay:    time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		})
	})
}
