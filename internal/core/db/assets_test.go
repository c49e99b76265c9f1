package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateAssetFromBytes(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	backdate := time.Date(2019, time.July, 4, 12, 0, 0, 0, time.UTC)

	t.Run("writes file under YYYY/MM", func(t *testing.T) {
		id, err := db.CreateAssetFromBytes([]byte("image bytes"), "photo.jpg", 1, backdate)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		asset, err := db.GetAsset(id)
		if err != nil {
			t.Fatalf("failed to get asset: %v", err)
		}
		if asset.Path != "2019/07/photo.jpg" {
			t.Errorf("expected path 2019/07/photo.jpg, got %q", asset.Path)
		}
		if asset.Size != int64(len("image bytes")) {
			t.Errorf("expected size %d, got %d", len("image bytes"), asset.Size)
		}

		data, err := os.ReadFile(filepath.Join(db.AssetRoot(), "2019", "07", "photo.jpg"))
		if err != nil {
			t.Fatalf("failed to read asset file: %v", err)
		}
		if string(data) != "image bytes" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("collisions get a numeric suffix", func(t *testing.T) {
		id, err := db.CreateAssetFromBytes([]byte("other bytes"), "photo.jpg", 1, backdate)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		asset, err := db.GetAsset(id)
		if err != nil {
			t.Fatalf("failed to get asset: %v", err)
		}
		if asset.Path != "2019/07/photo-1.jpg" {
			t.Errorf("expected path 2019/07/photo-1.jpg, got %q", asset.Path)
		}
	})

	t.Run("unsafe filenames are sanitized", func(t *testing.T) {
		id, err := db.CreateAssetFromBytes([]byte("x"), "../..//we ird?.png", 1, backdate)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		asset, err := db.GetAsset(id)
		if err != nil {
			t.Fatalf("failed to get asset: %v", err)
		}
		if asset.Filename != "we-ird-.png" {
			t.Errorf("unexpected sanitized filename: %q", asset.Filename)
		}
	})

	t.Run("empty filename rejected", func(t *testing.T) {
		if _, err := db.CreateAssetFromBytes([]byte("x"), "...", 1, backdate); err == nil {
			t.Error("expected error for empty filename, got nil")
		}
	})
}

func TestAssetURL(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	backdate := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)
	id, err := db.CreateAssetFromBytes([]byte("pdf"), "report.pdf", 3, backdate)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	url, err := db.AssetURL(id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if url != "/assets/2021/12/report.pdf" {
		t.Errorf("unexpected asset URL: %q", url)
	}

	if _, err := db.AssetURL(9999); err == nil {
		t.Error("expected error for missing asset, got nil")
	}
}

func TestTotalAssetSize(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	total, err := db.TotalAssetSize()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 for empty store, got %d", total)
	}

	backdate := time.Now()
	if _, err := db.CreateAssetFromBytes([]byte("12345"), "a.bin", 1, backdate); err != nil {
		t.Fatalf("failed to create asset: %v", err)
	}
	if _, err := db.CreateAssetFromBytes([]byte("123"), "b.bin", 1, backdate); err != nil {
		t.Fatalf("failed to create asset: %v", err)
	}

	total, err = db.TotalAssetSize()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 8 {
		t.Errorf("expected total 8, got %d", total)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my file (1).png", "my-file--1-.png"},
		{"../../etc/passwd", "passwd"},
		{"trailing.dot.", "trailing.dot"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
