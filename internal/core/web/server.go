package web

import (
	"log"
	"net/http"

	"github.com/delphiknight/mediaport/internal/core"
	"github.com/delphiknight/mediaport/internal/core/db"
)

type Server struct {
	db         *db.DB
	scanCfg    core.ScanConfig
	importOpts core.ImportOptions
	probeOpts  core.ProbeOptions
}

func StartServer(addr string, database *db.DB, scanCfg core.ScanConfig, importOpts core.ImportOptions, probeOpts core.ProbeOptions) {
	ws := newServer(database, scanCfg, importOpts, probeOpts)

	mux := http.NewServeMux()
	ws.registerRoutes(mux)

	log.Printf("Starting web server at %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Web server failed: %v", err)
	}
}

func newServer(database *db.DB, scanCfg core.ScanConfig, importOpts core.ImportOptions, probeOpts core.ProbeOptions) *Server {
	return &Server{
		db:         database,
		scanCfg:    scanCfg,
		importOpts: importOpts,
		probeOpts:  probeOpts,
	}
}

func (ws *Server) registerRoutes(mux *http.ServeMux) {
	ws.registerAssetRoutes(mux)

	mux.HandleFunc("/api/scan/start", ws.handleScanStart)
	mux.HandleFunc("/api/scan/batch", ws.handleScanBatch)
	mux.HandleFunc("/api/scan", ws.handleQuickScan)
	mux.HandleFunc("/api/documents/", ws.handleDocumentRoutes) // /api/documents/{id}/scan and /api/documents/{id}/import
	mux.HandleFunc("/api/probe", ws.handleProbe)
	mux.HandleFunc("/api/retry", ws.handleRetry)
	mux.HandleFunc("/api/logs", ws.handleLogs)
	mux.HandleFunc("/api/logs/", ws.handleLogRoutes) // /api/logs/{id}, /api/logs/export.csv, /api/logs/clear-dead, /api/logs/clear
	mux.HandleFunc("/api/stats", ws.handleStats)
}

func (ws *Server) registerAssetRoutes(mux *http.ServeMux) {
	// Serve imported files straight off the asset directory
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(ws.db.AssetRoot()))))
}
