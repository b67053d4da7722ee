package pkg

import (
	"os"
	"path/filepath"
)

// DefaultDirMode is the permission mode for directories created by stencil.
const DefaultDirMode os.FileMode = 0o755

// DefaultFileMode is the permission mode for files written by stencil.
const DefaultFileMode os.FileMode = 0o644

// MkdirFor creates every missing parent directory of the file at path.
func MkdirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), DefaultDirMode)
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	err := MkdirFor(path)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, DefaultFileMode)
}
