// Package api is the thin HTTP surface over the pipeline flows.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/argus-agency/dossier/internal/pipeline"
)

type Server struct {
	router   *chi.Mux
	port     int
	pipeline *pipeline.Pipeline
}

func NewServer(port int, p *pipeline.Pipeline) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		pipeline: p,
	}

	router.Get("/health", s.health)
	router.Post("/api/v1/query", s.query)
	router.Post("/api/v1/tasks", s.tasks)
	router.Post("/api/v1/groups/{groupID}/tasks", s.groupTasks)
	router.Post("/api/v1/summary", s.summary)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "query is required"})
		return
	}

	answer, err := s.pipeline.AnswerQuery(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "response": answer})
}

func (s *Server) tasks(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "query is required"})
		return
	}

	answer, err := s.pipeline.ExtractTasks(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "response": answer})
}

func (s *Server) groupTasks(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	env := s.pipeline.GroupTasks(r.Context(), groupID)

	status := http.StatusOK
	if env.Status == "error" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}

type summaryRequest struct {
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Rules     string `json:"rules"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Rules == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "rules text is required"})
		return
	}

	answer, err := s.pipeline.Summarize(r.Context(), req.GroupID, req.UserID, req.StartDate, req.EndDate, req.Rules)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "response": answer})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
