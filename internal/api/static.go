package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kargig/divemap-sub000/pkg/logger"
)

// StaticFileHandler serves the calculator frontend. Unknown paths without a
// file extension fall back to index.html so client-side routes resolve.
type StaticFileHandler struct {
	staticDir string
	logger    *logger.Logger
}

// NewStaticFileHandler creates a new static file handler
func NewStaticFileHandler(staticDir string, logger *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		staticDir: staticDir,
		logger:    logger.Named("static-handler"),
	}
}

// ServeHTTP serves static files
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Clean the path to prevent directory traversal attacks
	rel := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	if rel == "" {
		rel = "index.html"
	}

	absStaticDir, err := filepath.Abs(h.staticDir)
	if err != nil {
		h.logger.Error("Failed to get absolute path for static directory", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	fullPath := filepath.Join(absStaticDir, rel)
	if fullPath != absStaticDir && !strings.HasPrefix(fullPath, absStaticDir+string(filepath.Separator)) {
		h.logger.Warn("Attempted directory traversal", logger.String("requested_path", r.URL.Path))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	info, err := os.Stat(fullPath)
	switch {
	case err == nil && info.IsDir():
		fullPath = filepath.Join(fullPath, "index.html")
	case os.IsNotExist(err) && filepath.Ext(rel) == "":
		fullPath = filepath.Join(absStaticDir, "index.html")
	case err != nil:
		h.logger.Debug("File not found", logger.String("path", fullPath))
		http.NotFound(w, r)
		return
	}

	if _, err := os.Stat(fullPath); err != nil {
		http.NotFound(w, r)
		return
	}

	// Always revalidate
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, fullPath)
}
