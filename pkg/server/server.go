package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/renderer"
	"github.com/lirany1/pickles-explorer/pkg/report"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReloadFunc produces a fresh document in watch mode
type ReloadFunc func() (*models.Document, error)

// Server provides live report viewing
type Server struct {
	config   *config.Config
	engine   *analytics.Engine
	renderer *renderer.Renderer
	router   *mux.Router

	mu     sync.RWMutex
	doc    *models.Document
	source string
}

// NewServer creates a new report server
func NewServer(cfg *config.Config, engine *analytics.Engine) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if engine == nil {
		engine = analytics.NewEngine(cfg, nil)
	}
	s := &Server{
		config:   cfg,
		engine:   engine,
		renderer: renderer.NewRenderer(cfg),
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// SetDocument replaces the document being served
func (s *Server) SetDocument(doc *models.Document, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.source = source
}

func (s *Server) document() (*models.Document, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.source
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Infof("Server running at http://%s", addr)
	logger.Infof("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Watch reloads the document whenever path is written or recreated, until
// ctx is cancelled. Failed reloads keep the previous document.
func (s *Server) Watch(ctx context.Context, path string, reload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace files, so watch the directory
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	logger.Infof("Watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			doc, err := reload()
			if err != nil {
				logger.Warnf("Reload of %s failed: %v", path, err)
				continue
			}
			s.SetDocument(doc, path)
			logger.Infof("Reloaded %s", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("Watcher error: %v", err)
		}
	}
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", s.handleSummary).Methods("GET")
	api.HandleFunc("/scenarios", s.handleScenarios).Methods("GET")
	api.HandleFunc("/features", s.handleFeatures).Methods("GET")
	api.HandleFunc("/document", s.handleDocument).Methods("GET")
	api.HandleFunc("/history", s.handleHistory).Methods("GET")

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(w, report.Query{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.Summary)
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortKey, desc := sortParams(q.Get("sort"), q.Get("order"), analytics.ScenarioSortSteps)

	view, ok := s.view(w, report.Query{
		Search:       q.Get("search"),
		Tag:          q.Get("tag"),
		ScenarioSort: sortKey,
		ScenarioDesc: desc,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.ScenarioItems())
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortKey, desc := sortParams(q.Get("sort"), q.Get("order"), analytics.FeatureSortScenarios)

	view, ok := s.view(w, report.Query{
		Tag:         q.Get("tag"),
		FeatureSort: sortKey,
		FeatureDesc: desc,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.FeatureItems())
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, _ := s.document()
	if doc == nil {
		writeError(w, http.StatusServiceUnavailable, "no document loaded")
		return
	}

	data, err := report.PrettyJSON(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.config.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	trend, err := s.engine.Trend(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := report.DefaultQuery()
	q.Search = r.URL.Query().Get("search")
	q.Tag = r.URL.Query().Get("tag")

	view, ok := s.view(w, q)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, view, true); err != nil {
		logger.Errorf("Failed to render dashboard: %v", err)
	}
}

// view builds the current document's view or writes an error response
func (s *Server) view(w http.ResponseWriter, q report.Query) (*report.View, bool) {
	doc, source := s.document()
	if doc == nil {
		writeError(w, http.StatusServiceUnavailable, "no document loaded")
		return nil, false
	}

	view, err := report.Build(s.engine, doc, source, q)
	if err != nil {
		var invalid *models.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusInternalServerError, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return nil, false
	}
	return view, true
}

// sortParams resolves the sort key and direction, defaulting the direction
// per key when order is not asc or desc
func sortParams(key, order, fallback string) (string, bool) {
	if key == "" {
		key = fallback
	}
	switch order {
	case "asc":
		return key, false
	case "desc":
		return key, true
	}
	return key, analytics.DefaultDescending(key)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
