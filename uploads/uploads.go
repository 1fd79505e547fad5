package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"
)

// maxNameAttempts bounds how far a colliding timestamp is bumped.
const maxNameAttempts = 1000

// ContentDir stores uploaded files under <unix-millis><ext> names.
type ContentDir struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewContentDir returns a content directory rooted at root whose files are
// served under urlPrefix. The directory is created on first write.
func NewContentDir(root, urlPrefix string) *ContentDir {
	return &ContentDir{root: root, urlPrefix: urlPrefix, now: time.Now}
}

// Root is the filesystem location of the directory.
func (d *ContentDir) Root() string {
	return d.root
}

// Stored describes a file written by Save.
type Stored struct {
	Filename string
	Path     string // filesystem path
	URL      string // relative URL, e.g. /uploads/1714564800000.png
	Size     int64
}

// Save copies the uploaded file into the directory. An existing file is
// never overwritten: a taken name moves the timestamp forward by one
// millisecond until a free one is found.
func (d *ContentDir) Save(fh *multipart.FileHeader) (*Stored, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, fmt.Errorf("create content directory: %w", err)
	}

	ext := extension(fh.Filename)
	millis := d.now().UnixMilli()

	var dst *os.File
	var name string
	for i := 0; i < maxNameAttempts; i++ {
		name = strconv.FormatInt(millis+int64(i), 10) + ext
		dst, err = os.OpenFile(filepath.Join(d.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
	}
	if dst == nil {
		return nil, fmt.Errorf("no free file name after %d attempts", maxNameAttempts)
	}

	full := dst.Name()
	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	return &Stored{
		Filename: name,
		Path:     full,
		URL:      path.Join(d.urlPrefix, name),
		Size:     size,
	}, nil
}

// Remove deletes a file written by Save. A file that is already gone is not
// an error.
func (d *ContentDir) Remove(stored *Stored) error {
	if stored == nil {
		return nil
	}
	if err := os.Remove(stored.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", stored.Filename, err)
	}
	return nil
}

// extension is the part of the base name from its last dot. Dotfiles such as
// ".bashrc" have none.
func extension(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return ext
}
