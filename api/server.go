// Package api provides the HTTP and WebSocket server for newsdesk.
//
// It exposes the feed catalog, selection resolution, feed articles, batch
// quotes, stock fundamentals and the commodities snapshot as JSON, pushes
// market tiles to WebSocket clients, and can serve the exported static site.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/config"
	"github.com/seenimoa/newsdesk/internal/quotes"
	"github.com/seenimoa/newsdesk/internal/shell"
	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/web"
)

// QuoteSource resolves many symbols at once.
type QuoteSource interface {
	BatchQuotes(ctx context.Context, symbols []string) map[string]models.QuoteSnapshot
}

// Deps are the data sources behind the API.
type Deps struct {
	Catalog     *catalog.Catalog
	Feeds       shell.FeedSource
	Stocks      shell.StockSource
	Markets     shell.MarketSource
	Quotes      QuoteSource
	Commodities []quotes.Instrument
	Ticker      []quotes.Instrument
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	deps   Deps
	wsHub  *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if len(deps.Commodities) == 0 {
		deps.Commodities = quotes.DefaultCommodities
	}
	if len(deps.Ticker) == 0 {
		deps.Ticker = quotes.DefaultBoard
	}
	srv := &Server{
		cfg:   cfg,
		deps:  deps,
		wsHub: NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. The WebSocket hub and the ticker schedule run alongside.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run(ctx)

	ticker, err := s.startTicker(ctx)
	if err != nil {
		return err
	}
	if ticker != nil {
		defer func() { <-ticker.Stop().Done() }()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("api server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// startTicker broadcasts market tiles on the configured schedule while at
// least one WebSocket client is connected.
func (s *Server) startTicker(ctx context.Context) (*cron.Cron, error) {
	spec := s.cfg.API.TickerSchedule
	if spec == "" || s.deps.Markets == nil {
		return nil, nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { s.broadcastTicker(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func (s *Server) broadcastTicker(ctx context.Context) {
	if s.wsHub.ClientCount() == 0 {
		return
	}
	tiles := s.deps.Markets.Board(ctx, s.deps.Ticker)
	s.wsHub.Broadcast(WSMessage{Type: "ticker", Data: tiles})
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.With(middleware.Timeout(60*time.Second)).Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/health", s.handleHealth)
			r.Get("/catalog", s.handleCatalog)
			r.Post("/select", s.handleSelect)
			r.Get("/feeds/{abbr}", s.handleFeed)
			r.Get("/quotes", s.handleQuotes)
			r.Get("/fundamentals/{symbol}", s.handleFundamentals)
			r.Get("/commodities", s.handleCommodities)
			r.Get("/config/keys", s.handleGetConfigKeys)
		})

		// long-lived, so outside the timeout group
		r.Get("/ws", s.handleWebSocket)
	})

	s.mountStatic(r)

	return r
}

// mountStatic serves the site from api.site_dir when it exists. Otherwise
// the embedded shell is served with data/ backed by the export directory.
func (s *Server) mountStatic(r chi.Router) {
	if dir := s.cfg.API.SiteDir; dir != "" {
		if isDir(dir) {
			mountSite(r, os.DirFS(dir))
			return
		}
		log.Warn().Str("dir", dir).Msg("site directory missing, serving embedded site")
	}

	if out := s.cfg.Export.OutDir; out != "" && isDir(out) {
		data := http.StripPrefix("/data/", http.FileServerFS(os.DirFS(out)))
		r.Get("/data/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			data.ServeHTTP(w, r)
		})
	}
	mountSite(r, web.SiteFS())
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// mountSite serves the exported static site. Data files are never cached;
// unknown paths fall back to index.html.
func mountSite(r chi.Router, site fs.FS) {
	fileServer := http.FileServerFS(site)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := site.Open(rPath)
		if err != nil {
			serveIndexHTML(w, site)
			return
		}
		f.Close()

		if strings.HasPrefix(rPath, "data/") || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		fileServer.ServeHTTP(w, r)
	})
}

func serveIndexHTML(w http.ResponseWriter, site fs.FS) {
	data, err := fs.ReadFile(site, "index.html")
	if err != nil {
		http.Error(w, "site not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// APIResponse is the standard JSON envelope. Kind classifies upstream
// failures as "transport" or "parse".
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
