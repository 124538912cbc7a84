package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".css":   "text/css",
	".js":    "application/javascript",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".webp":  "image/webp",
	".mp3":   "audio/mpeg",
	".woff":  "font/woff",
	".woff2": "font/woff2",
}

// StaticHandler serves files under /assets from dir
func StaticHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, "/assets"))
		fullPath := filepath.Join(dir, filepath.FromSlash(rel))

		if ct, ok := contentTypes[strings.ToLower(filepath.Ext(fullPath))]; ok {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")

		http.ServeFile(w, r, fullPath)
	}
}
