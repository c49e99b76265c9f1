package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAssetRouteServesStoredFiles(t *testing.T) {
	_, database, mux := newTestServer(t)

	backdate := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	id, err := database.CreateAssetFromBytes([]byte("jpeg bytes"), "photo.jpg", 1, backdate)
	if err != nil {
		t.Fatalf("failed to create asset: %v", err)
	}
	asset, err := database.GetAsset(id)
	if err != nil {
		t.Fatalf("failed to get asset: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/assets/"+asset.Path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "jpeg bytes" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}

	t.Run("missing asset file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/assets/2020/03/nope.jpg", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestUnknownRoute(t *testing.T) {
	_, _, mux := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
