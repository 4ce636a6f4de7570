package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"finsight/internal/dataset"
	"finsight/internal/pages"
	"finsight/internal/session"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

const previewRows = 10

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	store     *session.Store
	loader    *dataset.Loader
	env       *pages.Env
}

// NewServer creates the dashboard and parses its templates
func NewServer(store *session.Store, loader *dataset.Loader, env *pages.Env) (*Server, error) {
	templates, err := template.New("").Funcs(funcMap()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		templates: templates,
		store:     store,
		loader:    loader,
		env:       env,
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the dashboard on addr
func (s *Server) Start(addr string) error {
	log.Printf("[Server] Dashboard listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/pages/:name", s.handlePage)
	s.router.GET("/datasets", s.handleDatasets)
	s.router.POST("/datasets/:id/activate", s.handleActivate)
}
