package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-formsite"
)

// ErrMountConflict is returned when the static and media mounts overlap.
var ErrMountConflict = errors.New("server: static and media urls overlap")

// StaticConfig tells Static where assets and uploads live.
type StaticConfig struct {
	StaticURL  string
	StaticRoot string
	MediaURL   string
	MediaRoot  string
	// Bundle backs StaticRoot; files missing from the root are served from
	// here. Defaults to the embedded site and renderer assets.
	Bundle fs.FS
}

// Static wraps next with static and media delivery. Requests under
// StaticURL are served from StaticRoot layered over the bundle; requests
// under MediaURL are served from MediaRoot when set. Everything else goes
// to next. The two mounts must not overlap.
func Static(next http.Handler, cfg StaticConfig) (http.Handler, error) {
	bundle := cfg.Bundle
	if bundle == nil {
		bundle = formsite.StaticFS()
	}
	staticFS := bundle
	if root := strings.TrimSpace(cfg.StaticRoot); root != "" {
		staticFS = formsite.LayerFS(os.DirFS(root), bundle)
	}

	mux := http.NewServeMux()
	staticURL := mountPoint(cfg.StaticURL, "/static/")
	mux.Handle(staticURL, http.StripPrefix(staticURL, noDirListing(http.FileServerFS(staticFS))))

	if root := strings.TrimSpace(cfg.MediaRoot); root != "" {
		mediaURL := mountPoint(cfg.MediaURL, "/media/")
		if MountsOverlap(staticURL, mediaURL) {
			return nil, fmt.Errorf("%w: %q and %q", ErrMountConflict, staticURL, mediaURL)
		}
		mux.Handle(mediaURL, http.StripPrefix(mediaURL, noDirListing(http.FileServerFS(os.DirFS(root)))))
	}
	mux.Handle("/", next)
	return mux, nil
}

// MountsOverlap reports whether one mount point contains the other.
func MountsOverlap(a, b string) bool {
	a, b = mountPoint(a, ""), mountPoint(b, "")
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

func mountPoint(url, fallback string) string {
	url = strings.TrimSpace(url)
	if url == "" || !strings.HasPrefix(url, "/") {
		return fallback
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
