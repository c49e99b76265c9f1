package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestProbeURLs(t *testing.T) {
	ctx := context.Background()

	t.Run("reports size and content type", func(t *testing.T) {
		srv := newFileServer(t, map[string][]byte{
			"/a.jpg": []byte("0123456789"),
			"/b.pdf": []byte("12345"),
		})

		urls := []string{srv.URL + "/a.jpg", srv.URL + "/b.pdf", srv.URL + "/missing.jpg"}
		results, totalSize := ProbeURLs(ctx, urls, ProbeOptions{})

		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}

		a := results[srv.URL+"/a.jpg"]
		if a.Error != "" || a.Size != 10 || a.ContentType != "image/jpeg" {
			t.Errorf("unexpected result for a.jpg: %+v", a)
		}

		missing := results[srv.URL+"/missing.jpg"]
		if missing.Error != "HTTP 404" {
			t.Errorf("expected HTTP 404 error, got %+v", missing)
		}

		// Failed probes contribute nothing to the total
		if totalSize != 15 {
			t.Errorf("expected total size 15, got %d", totalSize)
		}
	})

	t.Run("probing is read-only", func(t *testing.T) {
		var gets int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				atomic.AddInt64(&gets, 1)
			}
			w.Header().Set("Content-Length", "3")
		}))
		defer srv.Close()

		ProbeURLs(ctx, []string{srv.URL + "/x.jpg"}, ProbeOptions{})
		if atomic.LoadInt64(&gets) != 0 {
			t.Errorf("expected no GET requests during probe, got %d", gets)
		}
	})

	t.Run("transport failures reported per URL", func(t *testing.T) {
		srv := newFileServer(t, nil)
		url := srv.URL + "/x.jpg"
		srv.Close()

		results, totalSize := ProbeURLs(ctx, []string{url}, ProbeOptions{})
		if results[url].Error == "" {
			t.Error("expected a transport error, got none")
		}
		if totalSize != 0 {
			t.Errorf("expected total size 0, got %d", totalSize)
		}
	})

	t.Run("calls OnProbe per URL", func(t *testing.T) {
		srv := newFileServer(t, map[string][]byte{"/a.jpg": []byte("xyz")})

		var seen []string
		opts := ProbeOptions{OnProbe: func(url string, result ProbeResult) {
			seen = append(seen, fmt.Sprintf("%s err=%q", url, result.Error))
		}}
		ProbeURLs(ctx, []string{srv.URL + "/a.jpg", srv.URL + "/nope.jpg"}, opts)

		if len(seen) != 2 {
			t.Errorf("expected 2 callbacks, got %v", seen)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		results, totalSize := ProbeURLs(ctx, nil, ProbeOptions{})
		if len(results) != 0 || totalSize != 0 {
			t.Errorf("expected empty results, got %v (%d)", results, totalSize)
		}
	})
}
