package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, fieldName, fileName, content string) *multipart.FileHeader {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fw, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write file content: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/crops", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, fh, err := req.FormFile(fieldName)
	if err != nil {
		t.Fatalf("read form file back: %v", err)
	}

	return fh
}

func TestUploadStoreSave(t *testing.T) {
	dir := t.TempDir()

	store, err := NewUploadStore(dir, nil)
	if err != nil {
		t.Fatalf("new upload store: %v", err)
	}

	fh := fileHeader(t, "image", "maize.jpg", "not-really-a-jpeg")

	urlPath, err := store.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !strings.HasPrefix(urlPath, URLPrefix+"/") {
		t.Fatalf("expected a %s path, got %q", URLPrefix, urlPath)
	}
	if !strings.HasSuffix(urlPath, "-maize.jpg") {
		t.Fatalf("expected a timestamp-prefixed original name, got %q", urlPath)
	}

	name := strings.TrimPrefix(urlPath, URLPrefix+"/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "not-really-a-jpeg" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestUploadStoreSave_SanitizesFilename(t *testing.T) {
	dir := t.TempDir()

	store, err := NewUploadStore(dir, nil)
	if err != nil {
		t.Fatalf("new upload store: %v", err)
	}

	fh := fileHeader(t, "image", "../../etc/passwd", "oops")

	urlPath, err := store.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if strings.Contains(urlPath, "..") {
		t.Fatalf("traversal survived sanitization: %q", urlPath)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one stored file, got %d", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), "-passwd") {
		t.Fatalf("expected the base name only, got %q", entries[0].Name())
	}
}

func TestUploadStoreRemove(t *testing.T) {
	dir := t.TempDir()

	store, err := NewUploadStore(dir, nil)
	if err != nil {
		t.Fatalf("new upload store: %v", err)
	}

	fh := fileHeader(t, "image", "maize.jpg", "bytes")

	urlPath, err := store.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Remove(urlPath); err != nil {
		t.Fatalf("remove: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir after remove, got %d entries", len(entries))
	}

	// removing an already-missing file is not an error
	if err := store.Remove(urlPath); err != nil {
		t.Fatalf("remove of missing file: %v", err)
	}
}

func TestNewUploadStore_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	if _, err := NewUploadStore(dir, nil); err != nil {
		t.Fatalf("first construction: %v", err)
	}
	if _, err := NewUploadStore(dir, nil); err != nil {
		t.Fatalf("second construction on existing dir: %v", err)
	}
}
