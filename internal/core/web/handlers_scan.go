package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/delphiknight/mediaport/internal/core"
	"github.com/delphiknight/mediaport/internal/core/db"
)

// handleScanStart enumerates the documents eligible for scanning and returns
// a fresh progress snapshot. No documents are scanned yet; the client drives
// batches through /api/scan/batch so an interrupted scan can resume from the
// snapshot it last saved.
func (ws *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	progress, err := core.StartScan(ws.db, ws.scanCfg)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to start scan")
		log.Printf("Failed to start scan: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, scanStartResponse{
		Progress:     *progress,
		TotalBatches: progress.TotalBatches(),
	})
}

// handleScanBatch scans the next batch for the posted progress snapshot and
// returns the advanced snapshot.
func (ws *Server) handleScanBatch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var progress core.ScanProgress
	if !decodeJSON(w, r, &progress) {
		return
	}

	if progress.Done() {
		writeJSON(w, http.StatusOK, scanBatchResponse{Progress: progress, Done: true})
		return
	}

	if err := core.ScanBatch(ws.db, &progress, ws.scanCfg); err != nil {
		if errors.Is(err, core.ErrInvalidProgress) {
			jsonError(w, http.StatusBadRequest, "Invalid scan progress")
			return
		}
		jsonError(w, http.StatusInternalServerError, "Failed to scan batch")
		log.Printf("Failed to scan batch %d: %v", progress.NextBatch, err)
		return
	}

	writeJSON(w, http.StatusOK, scanBatchResponse{
		Progress: progress,
		Done:     progress.Done(),
	})
}

// handleQuickScan scans a single document looked up by URL: /api/scan?url=...
func (ws *Server) handleQuickScan(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		jsonError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}

	doc, err := ws.db.FindDocumentByURL(rawURL)
	if err != nil {
		jsonError(w, http.StatusNotFound, "Document not found")
		return
	}

	ws.scanSingle(w, doc.ID)
}

// handleDocumentRoutes routes per-document requests:
// /api/documents/{id}/scan and /api/documents/{id}/import
func (ws *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		jsonError(w, http.StatusNotFound, "Not Found")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	switch parts[1] {
	case "scan":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		ws.scanSingle(w, id)
	case "import":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		ws.importFile(w, r, id)
	default:
		jsonError(w, http.StatusNotFound, "Not Found")
	}
}

func (ws *Server) scanSingle(w http.ResponseWriter, id int64) {
	scanned, err := core.ScanDocument(ws.db, id, ws.scanCfg)
	if err != nil {
		jsonError(w, http.StatusNotFound, "Document not found")
		log.Printf("Failed to scan document %d: %v", id, err)
		return
	}

	writeJSON(w, http.StatusOK, scanned)
}

func (ws *Server) importFile(w http.ResponseWriter, r *http.Request, id int64) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := core.ImportFile(r.Context(), ws.db, id, req.URL, ws.importOpts)
	if err != nil {
		if errors.Is(err, db.ErrInvalidURL) {
			jsonError(w, http.StatusBadRequest, "Invalid file URL")
			return
		}
		message := result.Message
		if message == "" {
			message = "Failed to import file"
		}
		jsonError(w, http.StatusInternalServerError, message)
		log.Printf("Failed to import %s for document %d: %v", req.URL, id, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleProbe runs a dry-run check over the posted URLs without importing
// anything.
func (ws *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req probeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.URLs) == 0 {
		jsonError(w, http.StatusBadRequest, "No URLs to probe")
		return
	}

	results, totalSize := core.ProbeURLs(r.Context(), req.URLs, ws.probeOpts)
	writeJSON(w, http.StatusOK, probeResponse{
		Results:   results,
		TotalSize: totalSize,
	})
}

// handleRetry re-attempts every failed import.
func (ws *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	stats, err := core.RetryFailedImports(r.Context(), ws.db, ws.importOpts, nil)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to retry imports")
		log.Printf("Failed to retry imports: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, retryResponse{
		Attempted: stats.Attempted,
		Succeeded: stats.Succeeded,
		Skipped:   stats.Skipped,
		Failed:    stats.Failed,
	})
}
