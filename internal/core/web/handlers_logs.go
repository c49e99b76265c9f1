package web

import (
	"log"
	"net/http"
	"strconv"
	"strings"
)

// handleLogs lists import log entries, optionally filtered by status and
// paged: /api/logs?status=error&page=2&per_page=50
func (ws *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	entries, err := ws.db.ListImportLogs(status, page, perPage)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to list import logs")
		log.Printf("Failed to list import logs: %v", err)
		return
	}

	total, err := ws.db.CountImportLogs(status)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to count import logs")
		log.Printf("Failed to count import logs: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, logListResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// handleLogRoutes routes log management requests:
// /api/logs/export.csv, /api/logs/clear-dead, /api/logs/clear, /api/logs/{id}
func (ws *Server) handleLogRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/logs/")

	switch path {
	case "export.csv":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		ws.exportLogs(w, r)
		return
	case "clear-dead":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		ws.clearDeadLinks(w)
		return
	case "clear":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		ws.clearAllLogs(w)
		return
	}

	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		jsonError(w, http.StatusNotFound, "Not Found")
		return
	}
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	ws.deleteLog(w, id)
}

func (ws *Server) exportLogs(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="import-log.csv"`)
	if err := ws.db.ExportLogsCSV(w, status); err != nil {
		log.Printf("Failed to export import logs: %v", err)
	}
}

func (ws *Server) clearDeadLinks(w http.ResponseWriter) {
	deleted, err := ws.db.ClearDeadLinks()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to clear dead links")
		log.Printf("Failed to clear dead links: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: deleted})
}

func (ws *Server) clearAllLogs(w http.ResponseWriter) {
	deleted, err := ws.db.ClearAllLogs()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to clear import logs")
		log.Printf("Failed to clear import logs: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: deleted})
}

func (ws *Server) deleteLog(w http.ResponseWriter, id int64) {
	if err := ws.db.DeleteImportLog(id); err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to delete log entry")
		log.Printf("Failed to delete log entry %d: %v", id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleStats reports dashboard counters: per-status totals, documents
// touched, total asset bytes, and the most common errors.
func (ws *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	byStatus, err := ws.db.CountImportLogsByStatus()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to count import logs")
		log.Printf("Failed to count import logs: %v", err)
		return
	}

	documents, err := ws.db.CountDocumentsWithImports()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to count documents")
		log.Printf("Failed to count documents: %v", err)
		return
	}

	assetBytes, err := ws.db.TotalAssetSize()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to total asset size")
		log.Printf("Failed to total asset size: %v", err)
		return
	}

	topErrors, err := ws.db.TopErrors(5)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to list top errors")
		log.Printf("Failed to list top errors: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		ByStatus:   byStatus,
		Documents:  documents,
		AssetBytes: assetBytes,
		TopErrors:  topErrors,
	})
}
