// Package ui exposes the aggregation service over a JSON HTTP API: upload a
// workbook, pick a dimension, and fetch tables, charts, and insights. The
// handlers hold no aggregation logic of their own.
package ui

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mrrdash/app"
	"mrrdash/domain/revenue"
	"mrrdash/internal/config"
)

// DefaultUploadID addresses the workbook preloaded from EXCEL_FILE, when
// configured.
const DefaultUploadID = "default"

// upload is one received workbook held in memory for the session.
type upload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ReceivedAt time.Time `json:"received_at"`

	data []byte
}

// App represents the UI application
type App struct {
	router  *chi.Mux
	service *app.AnalysisService
	port    string

	maxUploadBytes int64

	uploadsMu sync.RWMutex
	uploads   map[string]*upload
}

// NewApp creates a new UI application
func NewApp(cfg *config.Config) (*App, error) {
	aggCfg := revenue.DefaultConfig()
	aggCfg.Year = cfg.Data.TargetYear

	a := &App{
		router:         chi.NewRouter(),
		service:        app.NewAnalysisService(aggCfg, cfg.Data.SheetName, nil),
		port:           cfg.Server.Port,
		maxUploadBytes: cfg.Data.MaxUploadBytes,
		uploads:        make(map[string]*upload),
	}

	if cfg.Data.ExcelFile != "" {
		if err := a.preloadDefault(cfg.Data.ExcelFile); err != nil {
			return nil, err
		}
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// preloadDefault registers the configured workbook under the "default"
// upload id so the API is usable without an upload step.
func (a *App) preloadDefault(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	a.uploads[DefaultUploadID] = &upload{
		ID:         DefaultUploadID,
		Name:       filepath.Base(path),
		Size:       int64(len(data)),
		ReceivedAt: time.Now(),
		data:       data,
	}
	log.Printf("[UI] Preloaded default workbook %s (%d bytes)", path, len(data))
	return nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

// setupRoutes configures the API surface
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/uploads", a.handleUpload)
		r.Get("/uploads", a.handleListUploads)

		r.Route("/uploads/{uploadID}", func(r chi.Router) {
			r.Get("/tables", a.handleTables)
			r.Get("/charts/bar", a.handleBarChart)
			r.Get("/charts/pie", a.handlePieChart)
			r.Get("/charts/trend", a.handleTrendChart)
			r.Get("/charts/monthly", a.handleMonthlyChart)
			r.Get("/charts/customers", a.handleCustomersChart)
			r.Get("/charts/customers/breakdown", a.handleCustomerBreakdownChart)
			r.Get("/charts/concentration", a.handleConcentrationChart)
			r.Get("/insights/monthly", a.handleMonthlyInsights)
			r.Get("/insights/customers", a.handleCustomerInsights)
		})
	})
}

// Start runs the HTTP server.
func (a *App) Start() error {
	addr := ":" + a.port
	log.Printf("[UI] Listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the chi mux, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) getUpload(id string) (*upload, bool) {
	a.uploadsMu.RLock()
	defer a.uploadsMu.RUnlock()
	u, ok := a.uploads[id]
	return u, ok
}

func (a *App) putUpload(u *upload) {
	a.uploadsMu.Lock()
	defer a.uploadsMu.Unlock()
	a.uploads[u.ID] = u
}
