// Package httpapi expõe o dashboard como uma API JSON (chi).
// Cada requisição é uma interação: filtros vêm da query string e nada é
// guardado entre requisições além das sessões de chat em memória.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// Server holds the router and its dependencies.
type Server struct {
	uc       *usecase.DashboardUseCase
	cfg      types.Config
	log      zerolog.Logger
	sessions *SessionStore
	router   chi.Router
	now      func() time.Time
}

// NewServer monta o router com middlewares, CORS e rotas.
func NewServer(uc *usecase.DashboardUseCase, cfg types.Config, logger zerolog.Logger) *Server {
	s := &Server{
		uc:       uc,
		cfg:      cfg,
		log:      logger,
		sessions: NewSessionStore(),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Completion.TimeoutSeconds+30) * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/warehouses", s.listWarehouses)
		r.Get("/dashboard", s.dashboard)
		r.Get("/summary", s.summary)
		r.Get("/warehouse-usage", s.warehouseUsage)
		r.Get("/queries", s.queryPerformance)
		r.Get("/storage", s.storage)
		r.Get("/sql", s.statements)
		r.Post("/insights", s.insights)

		r.Route("/chat/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Post("/messages", s.postMessage)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serve até ctx ser cancelado e então faz shutdown gracioso.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("Starting warehouse FinOps API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// NewLogger cria o logger do servidor no nível informado ("debug", "info"...).
// Em nível debug a saída é legível (ConsoleWriter); nos demais é JSON.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if lvl <= zerolog.DebugLevel {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
