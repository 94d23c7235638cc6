package calculator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// writeAtomically writes through a temporary file in the target directory and
// renames it into place, so a failed write never leaves a partial file.
func writeAtomically(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// SaveBinary writes the field to path in the binary full-field layout.
func (w *WindField) SaveBinary(path string, opts ...CodecOption) error {
	if !w.Valid() {
		return ErrNotCalculated
	}
	err := writeAtomically(path, func(f io.Writer) error {
		return w.EncodeBinary(f, opts...)
	})
	if err != nil {
		return err
	}
	log.WithField("path", path).Info("风场二进制文件已导出")
	return nil
}

// SaveText writes the readable dump to path.
func (w *WindField) SaveText(path string) error {
	if !w.Valid() {
		return ErrNotCalculated
	}
	err := writeAtomically(path, w.ExportText)
	if err != nil {
		return err
	}
	log.WithField("path", path).Info("风场文本文件已导出")
	return nil
}

// LoadBinary reads a field file written by SaveBinary or a compatible tool.
func LoadBinary(path string, opts ...CodecOption) (*WindField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w, err := DecodeBinary(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path":  path,
		"grid":  fmt.Sprintf("%dx%d", w.grid.Ny, w.grid.Nz),
		"steps": w.axis.Nt,
	}).Info("风场二进制文件已导入")
	return w, nil
}
