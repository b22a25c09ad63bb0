package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bot-variantes/internal/logger"
	"bot-variantes/internal/metrics"
	"bot-variantes/internal/models"
	"bot-variantes/internal/monitor"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine são as operações do monitor expostas por HTTP
type Engine interface {
	Items(ctx context.Context) ([]models.TrackedItem, error)
	CheckAll(ctx context.Context) monitor.CycleResult
	OpenNotification(ctx context.Context, id string) (string, error)
}

// Server é a interface HTTP auxiliar do bot
type Server struct {
	engine Engine
	http   *http.Server
}

// New cria o servidor escutando em addr
func New(addr string, engine Engine) *Server {
	s := &Server{engine: engine}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes monta o roteador
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/items", s.items)
	r.Post("/check", s.check)
	r.Get("/n/{id}", s.openNotification)
	return r
}

// Start escuta até Shutdown ser chamado
func (s *Server) Start() error {
	logger.Component("server").Info().Str("addr", s.http.Addr).Msg("Servidor HTTP iniciado")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown encerra o servidor
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type itemsResponse struct {
	Items     []models.TrackedItem `json:"items"`
	Attention int                  `json:"attention"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) items(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.Items(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items, Attention: monitor.AttentionCount(items)})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	res := s.engine.CheckAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{
		"checked":       res.Checked,
		"failed":        res.Failed,
		"fetches":       res.Fetches,
		"events":        res.Events,
		"notifications": res.Notifications,
		"attention":     res.Attention,
	})
}

func (s *Server) openNotification(w http.ResponseWriter, r *http.Request) {
	target, err := s.engine.OpenNotification(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, monitor.ErrNotificationNotFound):
		http.Error(w, "alerta não encontrado ou já aberto", http.StatusNotFound)
		return
	case err != nil:
		logger.Component("server").Error().Err(err).Msg("Erro ao abrir notificação")
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Component("server").Error().Err(err).Msg("Erro ao escrever resposta")
	}
}

// accessLog registra cada requisição no logger estruturado
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Component("server").Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Requisição HTTP")
	})
}
