package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joeblew999/plat-ingest/internal/api"
	"github.com/joeblew999/plat-ingest/internal/api/console"
	"github.com/joeblew999/plat-ingest/internal/backend"
	"github.com/joeblew999/plat-ingest/internal/db"
	"github.com/joeblew999/plat-ingest/internal/service"
	"github.com/joeblew999/plat-ingest/internal/templates"
	"github.com/joeblew999/plat-ingest/internal/ui"
	"github.com/joeblew999/plat-ingest/web"
)

// BoardIdle is how long an unused WMS page keeps its layer cards.
const BoardIdle = 2 * time.Hour

// ledgerSize bounds the in-memory ledger used without a data directory.
const ledgerSize = 500

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string // empty keeps the activity ledger in memory

	BackendURL     string
	BackendTimeout time.Duration // zero means no timeout
}

// Server is the ingest UI HTTP server.
type Server struct {
	config   Config
	router   chi.Router
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	renderer *templates.Renderer

	activity *service.ActivityService
	uploads  *service.UploadService
	wms      *service.WMSService
}

// New creates a new ingest server.
func New(cfg Config) (*Server, error) {
	renderer, err := templates.New(web.Templates(), web.TemplatePatterns...)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-ingest API", "1.0.0")
	humaConfig.Info.Description = "Tileset upload and WMS layer description UI in front of the ingest backend."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humago.New(mux, humaConfig),
		renderer: renderer,
	}

	var ledger service.Ledger = service.NewMemoryLedger(ledgerSize)
	if cfg.DataDir != "" {
		conn, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "ingest"})
		if err != nil {
			slog.Warn("duckdb unavailable, keeping activity in memory", "err", err)
		} else {
			s.db = conn
			ledger = db.NewActivityStore(conn)
		}
	}

	client := backend.New(cfg.BackendURL, backend.WithTimeout(cfg.BackendTimeout))
	s.activity = service.NewActivityService(ledger, service.NewActivityBus())
	s.uploads = service.NewUploadService(client, s.activity)
	s.wms = service.NewWMSService(client, service.NewBoardStore(BoardIdle), s.activity)

	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Server) routes() {
	// JSON API (Register* methods are discovered by huma.AutoRegister)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.activity))
	huma.AutoRegister(s.humaAPI, api.NewInfoHandler(s.config.BackendURL, s.config.DataDir, s.db != nil))

	// Datastar SSE endpoints behind the pages
	huma.AutoRegister(s.humaAPI, console.NewUploadHandler(s.uploads, s.renderer))
	huma.AutoRegister(s.humaAPI, console.NewWMSHandler(s.wms, s.renderer))
	huma.AutoRegister(s.humaAPI, console.NewActivityHandler(s.activity, s.renderer))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(chimiddleware.Recoverer)

	// Pages
	r.Get("/", s.handleUploadPage)
	r.Get("/upload", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	r.Get("/wms", s.handleWMSPage)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Everything else is served by huma (API, SSE, /docs, /openapi.json)
	r.Handle("/*", s.mux)

	s.router = r
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "upload-page", ui.NewUploadPage())
}

func (s *Server) handleWMSPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "wms-page", ui.NewWMSPage(service.NewBoardID()))
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	html, err := s.renderer.Render(name, data)
	if err != nil {
		slog.Error("render page", "page", name, "err", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(html))
}
