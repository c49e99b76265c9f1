package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/delphiknight/mediaport/internal/core/db"
)

// newTestDB creates a migrated in-memory database with a temp asset root.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.NewSQLiteDB(":memory:", t.TempDir(), "/assets")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// newFileServer serves fixed bytes for paths in files and 404 for the rest.
func newFileServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func addDocumentWithContent(t *testing.T, database *db.DB, content string) int64 {
	t.Helper()
	id, err := database.AddDocument("Test Post", "https://mysite.example.com/post", content, "publish")
	if err != nil {
		t.Fatalf("failed to add document: %v", err)
	}
	return id
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()

	t.Run("successful import rewrites the document", func(t *testing.T) {
		database := newTestDB(t)
		srv := newFileServer(t, map[string][]byte{"/files/photo.jpg": []byte("jpeg bytes")})
		fileURL := srv.URL + "/files/photo.jpg"

		docID := addDocumentWithContent(t, database, fmt.Sprintf(`<img src="%s">`, fileURL))

		result, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != db.StatusSuccess {
			t.Fatalf("expected success, got %+v", result)
		}
		if !result.URLReplaced {
			t.Error("expected document content to be rewritten")
		}

		doc, err := database.GetDocument(docID)
		if err != nil {
			t.Fatalf("failed to get document: %v", err)
		}
		if strings.Contains(doc.Content, fileURL) {
			t.Errorf("old URL survived in content: %q", doc.Content)
		}
		if !strings.Contains(doc.Content, result.AssetURL) {
			t.Errorf("content does not reference new asset URL: %q", doc.Content)
		}

		asset, err := database.GetAsset(result.AssetID)
		if err != nil {
			t.Fatalf("failed to get asset: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(database.AssetRoot(), filepath.FromSlash(asset.Path)))
		if err != nil {
			t.Fatalf("failed to read asset file: %v", err)
		}
		if string(data) != "jpeg bytes" {
			t.Errorf("unexpected asset contents: %q", data)
		}

		entries, err := database.ListImportLogs("", 1, 10)
		if err != nil {
			t.Fatalf("failed to list logs: %v", err)
		}
		if len(entries) != 1 || entries[0].Status != db.StatusSuccess {
			t.Errorf("expected one success log entry, got %v", entries)
		}
	})

	t.Run("second import is skipped without network", func(t *testing.T) {
		database := newTestDB(t)
		srv := newFileServer(t, map[string][]byte{"/files/photo.jpg": []byte("jpeg bytes")})
		fileURL := srv.URL + "/files/photo.jpg"

		docID := addDocumentWithContent(t, database, fmt.Sprintf(`<img src="%s">`, fileURL))

		first, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{})
		if err != nil {
			t.Fatalf("first import failed: %v", err)
		}

		// The server is gone; an idempotent retry must not touch it.
		srv.Close()

		second, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.Status != db.StatusSkipped {
			t.Fatalf("expected skipped, got %+v", second)
		}
		if second.AssetID != first.AssetID {
			t.Errorf("expected existing asset id %d, got %d", first.AssetID, second.AssetID)
		}
		if !strings.Contains(second.Message, "already imported") {
			t.Errorf("unexpected message: %q", second.Message)
		}

		// Still exactly one log row.
		total, err := database.CountImportLogs("")
		if err != nil {
			t.Fatalf("failed to count logs: %v", err)
		}
		if total != 1 {
			t.Errorf("expected 1 log entry, got %d", total)
		}
	})

	t.Run("missing remote file is a dead link, not an error", func(t *testing.T) {
		database := newTestDB(t)
		srv := newFileServer(t, nil)
		fileURL := srv.URL + "/gone/photo.jpg"

		docID := addDocumentWithContent(t, database, fmt.Sprintf(`<img src="%s">`, fileURL))

		result, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != db.StatusSkipped {
			t.Fatalf("expected skipped, got %+v", result)
		}
		wantMessage := fmt.Sprintf("File %s (HTTP 404)", db.DeadLinkMarker)
		if result.Message != wantMessage {
			t.Errorf("expected message %q, got %q", wantMessage, result.Message)
		}

		// Recorded so later scans stop reporting it.
		dead, err := database.QueryDeadLinks(docID)
		if err != nil {
			t.Fatalf("failed to query dead links: %v", err)
		}
		if dead[fileURL] != wantMessage {
			t.Errorf("dead link not recorded: %v", dead)
		}
	})

	t.Run("transport failure is logged as error", func(t *testing.T) {
		database := newTestDB(t)
		srv := newFileServer(t, nil)
		fileURL := srv.URL + "/files/photo.jpg"
		srv.Close() // connection refused from here on

		docID := addDocumentWithContent(t, database, fmt.Sprintf(`<img src="%s">`, fileURL))

		result, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if result.Status != db.StatusError {
			t.Fatalf("expected error status, got %+v", result)
		}

		entries, err := database.ListImportLogs(db.StatusError, 1, 10)
		if err != nil {
			t.Fatalf("failed to list logs: %v", err)
		}
		if len(entries) != 1 || entries[0].ErrorMessage == "" {
			t.Errorf("expected one error log entry with a message, got %v", entries)
		}
	})

	t.Run("invalid URL writes no log row", func(t *testing.T) {
		database := newTestDB(t)
		docID := addDocumentWithContent(t, database, "content")

		_, err := ImportFile(ctx, database, docID, "ftp://example.com/file.jpg", ImportOptions{})
		if !errors.Is(err, db.ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL, got %v", err)
		}

		total, err := database.CountImportLogs("")
		if err != nil {
			t.Fatalf("failed to count logs: %v", err)
		}
		if total != 0 {
			t.Errorf("expected no log entries, got %d", total)
		}
	})

	t.Run("missing document is rejected", func(t *testing.T) {
		database := newTestDB(t)
		if _, err := ImportFile(ctx, database, 9999, "https://example.com/a.jpg", ImportOptions{}); err == nil {
			t.Error("expected error for missing document, got nil")
		}
	})

	t.Run("oversized file is rejected, not truncated", func(t *testing.T) {
		database := newTestDB(t)
		srv := newFileServer(t, map[string][]byte{"/big.jpg": []byte("0123456789")})
		fileURL := srv.URL + "/big.jpg"

		content := fmt.Sprintf(`<img src="%s">`, fileURL)
		docID := addDocumentWithContent(t, database, content)

		result, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{MaxDownloadSize: 4})
		if err == nil {
			t.Fatal("expected error for oversized file, got nil")
		}
		if result.Status != db.StatusError {
			t.Errorf("expected error status, got %+v", result)
		}
		size, err := database.TotalAssetSize()
		if err != nil {
			t.Fatalf("failed to compute asset size: %v", err)
		}
		if size != 0 {
			t.Errorf("expected no stored assets, got %d bytes", size)
		}
		doc, err := database.GetDocument(docID)
		if err != nil {
			t.Fatalf("failed to get document: %v", err)
		}
		if doc.Content != content {
			t.Errorf("document content was rewritten: %q", doc.Content)
		}
	})

	t.Run("oversized file without content length is rejected", func(t *testing.T) {
		database := newTestDB(t)
		// The probe reports nothing useful, so only the download can catch
		// the over-limit body.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			if r.Method == http.MethodHead {
				return
			}
			_, _ = w.Write([]byte("0123456789"))
		}))
		t.Cleanup(srv.Close)
		fileURL := srv.URL + "/big.jpg"

		docID := addDocumentWithContent(t, database, fmt.Sprintf(`<img src="%s">`, fileURL))

		result, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{MaxDownloadSize: 4})
		if err == nil {
			t.Fatal("expected error for oversized file, got nil")
		}
		if result.Status != db.StatusError {
			t.Errorf("expected error status, got %+v", result)
		}
		size, err := database.TotalAssetSize()
		if err != nil {
			t.Fatalf("failed to compute asset size: %v", err)
		}
		if size != 0 {
			t.Errorf("expected no stored assets, got %d bytes", size)
		}
	})

	t.Run("skip result survives a missing asset row", func(t *testing.T) {
		database := newTestDB(t)
		fileURL := "https://example.com/files/gone.jpg"
		docID := addDocumentWithContent(t, database, fmt.Sprintf(`<img src="%s">`, fileURL))

		// A success log row whose asset no longer exists.
		if _, err := database.InsertImportLog(db.ImportLogEntry{
			DocumentID:  docID,
			OriginalURL: fileURL,
			AssetID:     9999,
			Status:      db.StatusSuccess,
		}); err != nil {
			t.Fatalf("failed to insert log entry: %v", err)
		}

		result, err := ImportFile(ctx, database, docID, fileURL, ImportOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != db.StatusSkipped {
			t.Fatalf("expected skipped, got %+v", result)
		}
		if result.AssetID != 9999 {
			t.Errorf("expected asset ID 9999, got %d", result.AssetID)
		}
		if result.AssetURL != "" {
			t.Errorf("expected empty asset URL for missing asset, got %q", result.AssetURL)
		}
	})
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://example.com/files/photo.jpg", "photo.jpg", false},
		{"https://example.com/photo.jpg?size=large", "photo.jpg", false},
		{"https://example.com/", "", true},
		{"https://example.com", "", true},
	}
	for _, tt := range tests {
		got, err := filenameFromURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("filenameFromURL(%q): expected error, got %q", tt.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("filenameFromURL(%q): unexpected error %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("filenameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
