package handlers

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// StaticHandler serves files from assets (rooted at its "assets" directory)
// under the /assets/ prefix
func StaticHandler(assets fs.FS) http.HandlerFunc {
	root, err := fs.Sub(assets, "assets")
	if err != nil {
		root = assets
	}
	files := http.FileServer(http.FS(root))

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/assets")
		if name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}

		// Set proper MIME types based on file extension
		switch strings.ToLower(path.Ext(name)) {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "application/javascript")
		case ".svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		case ".ico":
			w.Header().Set("Content-Type", "image/x-icon")
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")

		req := r.Clone(r.Context())
		req.URL.Path = name
		files.ServeHTTP(w, req)
	}
}
