// Package export names and writes finished composites.
//
// Files are named after the mode and the composite time in Unix
// milliseconds, so successive shots sort chronologically:
//
//	photo-strip-1707912000000.png   strip mode
//	photo-booth-1707912000000.png   single mode
//
// [Save] writes through a temporary file and renames it onto a name it has
// claimed exclusively, so a crash never leaves a truncated PNG under the
// final name and concurrent savers never overwrite each other.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
)

// Extension is the file extension of every exported composite.
const Extension = ".png"

// FileMode is the permission of exported files.
const FileMode os.FileMode = 0o644

// maxCollisions bounds the suffix search in Save.
const maxCollisions = 100

// Filename returns the export name for a composite made at t.
func Filename(mode layout.Mode, t time.Time) string {
	prefix := "photo-strip"
	if mode == layout.ModeSingle {
		prefix = "photo-booth"
	}
	return fmt.Sprintf("%s-%d%s", prefix, t.UnixMilli(), Extension)
}

// Save writes data to dir/name and returns the path written. dir is
// created if needed. An existing file is never overwritten; a numeric
// suffix is added instead.
func Save(dir, name string, data []byte) (string, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.New(errors.ErrCodeInvalidPath, "invalid file name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", tmp.Name())
	}
	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return "", errors.Wrap(errors.ErrCodeInternal, err, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", tmp.Name())
	}

	path, err := reserve(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(path)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "rename to %s", path)
	}
	return path, nil
}

// reserve claims the first free name by creating it exclusively. Another
// writer racing for the same name gets the next suffix.
func reserve(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxCollisions; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i+1, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FileMode)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
		}
		f.Close()
		return path, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPath, "no free file name for %s in %s", name, dir)
}
