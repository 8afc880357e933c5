// Package fsprobe answers existence questions about component working
// directories.
package fsprobe

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/felixgeelhaar/ananke/internal/errors"
)

// Probe checks paths relative to Root on Fs.
type Probe struct {
	Fs   afero.Fs
	Root string
}

// New returns a probe rooted at root on the OS filesystem.
func New(root string) *Probe {
	return &Probe{Fs: afero.NewOsFs(), Root: root}
}

// Path joins elem onto the probe root.
func (p *Probe) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Root}, elem...)...)
}

// Exists reports whether the path exists. Any error other than "not exist"
// is returned as an IO-001 error.
func (p *Probe) Exists(elem ...string) (bool, error) {
	path := p.Path(elem...)
	_, err := p.Fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.NewFilesystemProbeError(path, err)
}

// DirExists reports whether the path exists and is a directory.
func (p *Probe) DirExists(elem ...string) (bool, error) {
	path := p.Path(elem...)
	ok, err := afero.DirExists(p.Fs, path)
	if err != nil {
		return false, errors.NewFilesystemProbeError(path, err)
	}
	return ok, nil
}
