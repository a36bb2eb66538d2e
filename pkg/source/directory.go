package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/raster"
)

// imageExts are the file extensions Directory treats as frames.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Directory is a file-backed camera. Each snapshot returns the next image of
// the directory in name order, wrapping around at the end.
type Directory struct {
	mu    sync.Mutex
	dir   string
	files []string
	next  int
	now   func() time.Time
}

// NewDirectory scans dir for image files. An empty directory is not an
// error; the source simply reports itself unavailable.
func NewDirectory(dir string) (*Directory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "frame directory %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read frame directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return &Directory{dir: dir, files: files, now: time.Now}, nil
}

// Len returns the number of frames found.
func (d *Directory) Len() int { return len(d.files) }

// Available reports whether the directory holds at least one image.
func (d *Directory) Available() bool { return len(d.files) > 0 }

// Snapshot implements FrameSource.
func (d *Directory) Snapshot(mirror bool) (*raster.Raster, error) {
	if len(d.files) == 0 {
		return nil, errors.New(errors.ErrCodeFeedUnavailable, "no frames in %s", d.dir)
	}

	d.mu.Lock()
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedUnavailable, err, "decode frame %s", filepath.Base(path))
	}
	if mirror {
		return raster.Adopt(imaging.FlipH(img), raster.OriginCapture, true, d.now()), nil
	}
	return raster.New(img, raster.OriginCapture, false, d.now()), nil
}

var _ FrameSource = (*Directory)(nil)
