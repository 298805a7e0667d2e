package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Version is reported by GET /info.
var Version = "dev"

// Notices is the notification surface the server exposes.
type Notices interface {
	Notices() []domain.Notice
	Get(id string) (domain.Notice, bool)
	Dismiss(id string) bool
	Subscribe(buffer int) (<-chan domain.Notice, func())
}

// Entities is the read side of the entity cache.
type Entities interface {
	Streams() []domain.Stream
	CurrentUser() (domain.User, bool)
}

// ActionLister lists the registered actions.
type ActionLister interface {
	IDs() []domain.ActionID
}

// Config wires the server to the rest of the client.
type Config struct {
	Engine   ports.ModalEngine
	Actions  ActionLister
	Notices  Notices
	Entities Entities
	Fallback ports.FallbackStore // optional
	Metrics  http.Handler        // optional
	Logger   *slog.Logger
}

// Server serves the modal engine over HTTP.
type Server struct {
	engine   ports.ModalEngine
	actions  ActionLister
	notices  Notices
	entities Entities
	fallback ports.FallbackStore
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(cfg Config) http.Handler {
	s := &Server{
		engine:   cfg.Engine,
		actions:  cfg.Actions,
		notices:  cfg.Notices,
		entities: cfg.Entities,
		fallback: cfg.Fallback,
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/actions", s.ListActions)

	r.Route("/modal", func(r chi.Router) {
		r.Get("/", s.GetModal)
		r.Post("/open", s.OpenModal)
		r.Patch("/form", s.EditForm)
		r.Post("/submit", s.SubmitModal)
		r.Post("/close", s.CloseModal)
	})

	r.Get("/notices", s.ListNotices)
	r.Delete("/notices/{id}", s.DismissNotice)
	r.Get("/events", s.SubscribeEvents)

	r.Get("/streams", s.ListStreams)
	r.Get("/user", s.GetUser)
	if s.fallback != nil {
		r.Get("/fallback/{kind}", s.ListFallback)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ModalResponse is the body of the modal endpoints.
type ModalResponse struct {
	Session domain.Session `json:"session"`
	View    *domain.View   `json:"view,omitempty"`
}

// SubmitResponse is the body of POST /modal/submit.
type SubmitResponse struct {
	Dispatched bool           `json:"dispatched"`
	Notice     *domain.Notice `json:"notice,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "storefront-http",
		"version": strings.TrimSpace(Version),
	})
}

// ListActions handles the GET /actions request.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.actions.IDs())
}

// GetModal handles the GET /modal request.
func (s *Server) GetModal(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.modal())
}

// OpenModal handles the POST /modal/open request.
func (s *Server) OpenModal(w http.ResponseWriter, r *http.Request) {
	var body domain.OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("OpenModal: Invalid request body", "err", err)
		return
	}
	if _, err := s.engine.Open(r.Context(), body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.modal())
}

// EditForm handles the PATCH /modal/form request. The body maps field names to values.
func (s *Server) EditForm(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("EditForm: Invalid request body", "err", err)
		return
	}

	// All fields land or none do.
	view, err := s.engine.Render()
	if err == nil {
		err = view.SetAll(body)
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.modal())
}

// SubmitModal handles the POST /modal/submit request.
// With ?wait=true the response is delayed until the dispatched call settled.
func (s *Server) SubmitModal(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.engine.Submit(r.Context())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if ticket == nil {
		s.writeJSON(w, http.StatusOK, SubmitResponse{Dispatched: false})
		return
	}

	status := http.StatusAccepted
	if r.URL.Query().Get("wait") == "true" {
		if err := ticket.Wait(r.Context()); err != nil && r.Context().Err() != nil {
			s.logger.Debug("SubmitModal: client left before settlement", "notice_id", ticket.ID())
			return
		}
		status = http.StatusOK
	}

	resp := SubmitResponse{Dispatched: true}
	if n, ok := s.notices.Get(ticket.ID()); ok {
		resp.Notice = &n
	}
	s.writeJSON(w, status, resp)
}

// CloseModal handles the POST /modal/close request.
func (s *Server) CloseModal(w http.ResponseWriter, r *http.Request) {
	s.engine.Close()
	w.WriteHeader(http.StatusNoContent)
}

// ListNotices handles the GET /notices request.
func (s *Server) ListNotices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.notices.Notices())
}

// DismissNotice handles the DELETE /notices/{id} request.
func (s *Server) DismissNotice(w http.ResponseWriter, r *http.Request) {
	if !s.notices.Dismiss(chi.URLParam(r, "id")) {
		s.writeError(w, http.StatusNotFound, "Notice not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE). Every new or settled
// notice is sent as one JSON event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.notices.Subscribe(16)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				s.logger.Error("SSE: notice encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: notice\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// ListStreams handles the GET /streams request.
func (s *Server) ListStreams(w http.ResponseWriter, r *http.Request) {
	streams := s.entities.Streams()
	if streams == nil {
		streams = []domain.Stream{}
	}
	s.writeJSON(w, http.StatusOK, streams)
}

// GetUser handles the GET /user request.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.entities.CurrentUser()
	if !ok {
		s.writeError(w, http.StatusNotFound, "No user loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

// ListFallback handles the GET /fallback/{kind} request.
func (s *Server) ListFallback(w http.ResponseWriter, r *http.Request) {
	kind := domain.AttemptKind(chi.URLParam(r, "kind"))
	attempts, err := s.fallback.List(r.Context(), kind)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list attempts")
		s.logger.Error("ListFallback failed", "kind", kind, "err", err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	s.writeJSON(w, http.StatusOK, attempts)
}

// -- Helpers --

func (s *Server) modal() ModalResponse {
	resp := ModalResponse{Session: s.engine.State()}
	if view, err := s.engine.Render(); err == nil {
		resp.View = &view
	}
	return resp
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoSession):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownField):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrValidation):
		s.writeError(w, http.StatusUnprocessableEntity, domain.NoticeOf(err, err.Error()))
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		s.logger.Error("Engine call failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
