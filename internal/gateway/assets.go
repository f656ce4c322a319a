package gateway

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

//go:embed static
var embeddedAssets embed.FS

// devDistCandidates are tried, in order, before falling back to the
// embedded copy — so editing static/ during development is picked up
// without a rebuild, mirroring the original desktop shell's dev-mode disk
// fallback over its bundled assets.
var devDistCandidates = []string{"internal/gateway/static", "static", "../static", "../../static"}

// assetFS returns the filesystem static assets are served from: the first
// devDistCandidates entry that exists on disk, or the embedded copy.
func assetFS() fs.FS {
	for _, dir := range devDistCandidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	sub, err := fs.Sub(embeddedAssets, "static")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// staticHandler serves assetFS, falling back to index.html for any path
// that doesn't resolve to a real file — the usual single-page-app catch-all.
func staticHandler(assets fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}
		if f, err := assets.Open(trimLeadingSlash(path)); err == nil {
			_ = f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/index.html"
		fileServer.ServeHTTP(w, r2)
	})
}

func trimLeadingSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return filepath.Clean(p)
}
