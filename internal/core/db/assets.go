package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CreateAssetFromBytes stores downloaded file bytes as a permanent local
// asset owned by a document. The file lands under the asset root in a
// YYYY/MM directory derived from backdate (the owning document's original
// timestamp) so assets sort alongside the content that references them.
// Filename collisions are resolved with a numeric suffix.
func (db *DB) CreateAssetFromBytes(data []byte, filename string, documentID int64, backdate time.Time) (int64, error) {
	if db.assetRoot == "" {
		return 0, errors.New("asset root directory not configured")
	}
	filename = sanitizeFilename(filename)
	if filename == "" {
		return 0, errors.New("empty filename")
	}

	subdir := backdate.Format("2006/01")
	dir := filepath.Join(db.assetRoot, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create asset directory: %w", err)
	}

	name, err := availableFilename(dir, filename)
	if err != nil {
		return 0, err
	}

	fullPath := filepath.Join(dir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write asset file: %w", err)
	}

	relPath := subdir + "/" + name
	result, err := db.db.Exec(
		"INSERT INTO assets (document_id, filename, path, size, created_at) VALUES (?, ?, ?, ?, ?)",
		documentID,
		name,
		relPath,
		len(data),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		os.Remove(fullPath)
		return 0, fmt.Errorf("failed to record asset: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

func (db *DB) GetAsset(id int64) (Asset, error) {
	var a Asset
	err := db.db.QueryRow(
		"SELECT id, document_id, filename, path, size, created_at FROM assets WHERE id = ?", id,
	).Scan(&a.ID, &a.DocumentID, &a.Filename, &a.Path, &a.Size, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Asset{}, fmt.Errorf("asset not found: %d", id)
		}
		return Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}
	return a, nil
}

// AssetURL returns the public URL of a stored asset.
func (db *DB) AssetURL(id int64) (string, error) {
	a, err := db.GetAsset(id)
	if err != nil {
		return "", err
	}
	return db.assetBaseURL + "/" + a.Path, nil
}

// AssetRoot returns the directory asset files are stored under.
func (db *DB) AssetRoot() string {
	return db.assetRoot
}

// TotalAssetSize sums the stored size of every asset, in bytes.
func (db *DB) TotalAssetSize() (int64, error) {
	var total sql.NullInt64
	if err := db.db.QueryRow("SELECT SUM(size) FROM assets").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum asset sizes: %w", err)
	}
	return total.Int64, nil
}

// sanitizeFilename strips any path components and characters that are unsafe
// in a filesystem name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), ".")
}

// availableFilename finds a name in dir that does not collide with an
// existing file, appending -1, -2, ... before the extension as needed.
func availableFilename(dir, filename string) (string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	name := filename
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check asset filename: %w", err)
		}
		if i > 10000 {
			return "", fmt.Errorf("could not find free filename for %q", filename)
		}
		name = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
}
