package memory

import "github.com/crossfs/crossfs"

func init() {
	crossfs.RegisterDriver("memory", func(cfg *crossfs.Config) (crossfs.FileSystem, error) {
		return New(), nil
	})
}
