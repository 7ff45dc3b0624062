package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kargig/divemap-sub000/internal/config"
	"github.com/kargig/divemap-sub000/internal/websocket"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

// Router wires the API handlers
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	config   *config.Config
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(handler *Handler, wsServer *websocket.Server, config *config.Config, logger *logger.Logger) *Router {
	return &Router{
		handler:  handler,
		wsServer: wsServer,
		config:   config,
		logger:   logger.Named("router"),
	}
}

// Routes returns the HTTP handler for all routes
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)
	r.Use(rt.cors)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", rt.handler.GetHealth)
		r.Get("/config", rt.handler.GetConfig)

		r.Route("/calculators", func(r chi.Router) {
			r.Use(middleware.Timeout(10 * time.Second))
			r.Post("/mod", rt.handler.Calculate(CalcMOD))
			r.Post("/best-mix", rt.handler.Calculate(CalcBestMix))
			r.Post("/sac", rt.handler.Calculate(CalcSAC))
			r.Post("/gas-plan", rt.handler.Calculate(CalcGasPlan))
			r.Post("/fill-cost", rt.handler.Calculate(CalcFillCost))
			r.Post("/icd", rt.handler.Calculate(CalcICD))
			r.Post("/z-factor", rt.handler.Calculate(CalcZFactor))
		})

		r.Get("/sites", rt.handler.GetSites)
		r.Get("/sites/{id}/conditions", rt.handler.GetSiteConditions)

		r.Get("/ws", rt.wsServer.HandleConnection)
	})

	if dir := rt.config.Server.StaticFilesDir; dir != "" {
		r.Handle("/*", NewStaticFileHandler(dir, rt.logger))
	}

	return r
}

// requestLogger logs each request at debug level
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		rt.logger.Debug("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int64("bytes_in", r.ContentLength),
			logger.Int("bytes_out", ww.BytesWritten()),
			logger.Duration("duration", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// cors applies the configured allowed origins
func (rt *Router) cors(next http.Handler) http.Handler {
	allowed := rt.config.Server.CORSAllowedOrigins
	allowAll := false
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || containsFold(allowed, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
