package server

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// apiPrefixes are answered with JSON 404s instead of the single-page app shell.
var apiPrefixes = []string{"/api/", "/boards", "/tasks", "/users", "/export", "/labels", "/healthz"}

func isAPIPath(p string) bool {
	for _, prefix := range apiPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func notFoundJSON(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
}

// frontend serves the compiled board UI. Files in the bundle are served as is and every
// other path gets index.html so client-side routes survive a reload.
type frontend struct {
	root  string
	index string
	files http.Handler
}

func newFrontend(dir string) (*frontend, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return nil, err
	}
	return &frontend{
		root:  dir,
		index: index,
		files: http.FileServer(gin.Dir(dir, false)),
	}, nil
}

func (f *frontend) serve(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		notFoundJSON(c)
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		notFoundJSON(c)
		return
	}

	clean := path.Clean("/" + c.Request.URL.Path)
	if clean != "/" && clean != "/index.html" {
		info, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(clean)))
		if err == nil && !info.IsDir() {
			f.files.ServeHTTP(c.Writer, c.Request)
			return
		}
	}
	c.File(f.index)
}

// mountStatic attaches the front-end bundle when one is configured. Without it the server
// runs API only and unknown paths get JSON 404s.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.engine.NoRoute(notFoundJSON)
		s.logger.Warn("static directory not configured; API only mode")
		return
	}

	fe, err := newFrontend(s.staticDir)
	if err != nil {
		s.engine.NoRoute(notFoundJSON)
		s.logger.Warn("front-end bundle unavailable; API only mode", "path", s.staticDir, "error", err)
		return
	}
	s.engine.NoRoute(fe.serve)
}
