package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agroconnect/marketplace/internal/observability"
)

// URLPrefix is the public path the stored files are served under.
const URLPrefix = "/uploads"

// UploadStore persists crop images on local disk. Files are stored as
// <unix-ms>-<original base name> and referenced by their /uploads/ URL path.
type UploadStore struct {
	dir  string
	prom *observability.Prom
}

func NewUploadStore(dir string, prom *observability.Prom) (*UploadStore, error) {
	// idempotent, repeated boots reuse the same directory
	err := os.MkdirAll(dir, 0o755)

	if err != nil {
		return nil, err
	}

	return &UploadStore{dir: dir, prom: prom}, nil
}

func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes one multipart file into the upload directory and returns the
// URL path it will be served under. The original filename goes through
// filepath.Base so a crafted name cannot escape the directory.
func (s *UploadStore) Save(fh *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))

	src, err := fh.Open()

	if err != nil {
		return "", err
	}

	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))

	if err != nil {
		return "", err
	}

	n, err := io.Copy(dst, src)

	if cerr := dst.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		// do not leave a truncated file behind
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}

	if s.prom != nil {
		s.prom.UploadBytesTotal.Add(float64(n))
	}

	return URLPrefix + "/" + name, nil
}

// Remove deletes the file behind a stored /uploads/ path. A missing file is
// not an error, deletion only has to be attempted on the one reclaim path.
func (s *UploadStore) Remove(urlPath string) error {
	name := filepath.Base(strings.TrimPrefix(urlPath, URLPrefix+"/"))

	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
