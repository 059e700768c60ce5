package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirEntries(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		keys   []string
		want   []dirEntry
	}{
		{
			name:   "empty",
			prefix: "dir/",
			keys:   nil,
			want:   nil,
		},
		{
			name:   "own marker skipped",
			prefix: "dir/",
			keys:   []string{"dir/"},
			want:   nil,
		},
		{
			name:   "files and one collapsed subdirectory",
			prefix: "dir/",
			keys: []string{
				"dir/",
				"dir/b.txt",
				"dir/a.txt",
				"dir/sub/deep.txt",
				"dir/sub/deeper/x.txt",
				"dir/sub/",
			},
			want: []dirEntry{
				{key: "dir/a.txt", isDir: false},
				{key: "dir/b.txt", isDir: false},
				{key: "dir/sub/", isDir: true},
			},
		},
		{
			name:   "root prefix",
			prefix: "",
			keys:   []string{"top.txt", "nested/file.txt"},
			want: []dirEntry{
				{key: "nested/", isDir: true},
				{key: "top.txt", isDir: false},
			},
		},
		{
			name:   "keys outside prefix ignored",
			prefix: "a/",
			keys:   []string{"a/x.txt", "b/y.txt"},
			want: []dirEntry{
				{key: "a/x.txt", isDir: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dirEntries(tt.prefix, tt.keys))
		})
	}
}
