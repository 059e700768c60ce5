package local

import "github.com/crossfs/crossfs"

func init() {
	crossfs.RegisterDriver("local", func(cfg *crossfs.Config) (crossfs.FileSystem, error) {
		return New(cfg.LocalBasePath)
	})
}
