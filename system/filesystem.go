// Package system holds the seams between the build tooling and the machine it runs on.
package system

import (
	"io/fs"
	"os"
	"path/filepath"
)

// VirtualFS reads and writes the API description files.
type VirtualFS interface {
	fs.FS
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// FileSystem is a VirtualFS over the operating system's files. Names are OS paths.
type FileSystem struct{}

var _ VirtualFS = (*FileSystem)(nil)

func (fs *FileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// WriteFile writes data to name, creating missing parent directories.
func (fs *FileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, data, perm)
}
