// Package gateway exposes the service facade over HTTP.
package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/debate"
	"github.com/juliuspor/Harmony/internal/service"
	"github.com/juliuspor/Harmony/internal/store"
)

type Gateway struct {
	svc *service.Service
}

func New(svc *service.Service) *Gateway {
	return &Gateway{svc: svc}
}

// Handler builds the route mux.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("POST /projects/{id}/submissions", g.handleAddSubmissions)
	mux.HandleFunc("GET /projects/{id}/clusters", g.handleClusters)
	mux.HandleFunc("POST /projects/{id}/debates", g.handleCreateDebate)
	mux.HandleFunc("GET /projects/{id}/debates", g.handleListDebates)
	mux.HandleFunc("GET /debates/{id}", g.handleGetDebate)
	mux.HandleFunc("DELETE /debates/{id}", g.handleCancelDebate)
	mux.HandleFunc("GET /debates/{id}/consensus", g.handleGetConsensus)
	return mux
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submissionsRequest struct {
	Submissions []service.SubmissionInput `json:"submissions"`
}

func (g *Gateway) handleAddSubmissions(w http.ResponseWriter, r *http.Request) {
	var req submissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ids, err := g.svc.AddSubmissions(r.Context(), r.PathValue("id"), req.Submissions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"submission_ids": ids})
}

func (g *Gateway) handleClusters(w http.ResponseWriter, r *http.Request) {
	result, err := g.svc.Cluster(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clusters":         result.Clusters,
		"num_clusters":     result.NumGroups,
		"silhouette_score": result.Silhouette,
	})
}

type createDebateRequest struct {
	Clusters [][]string `json:"clusters,omitempty"`
}

func (g *Gateway) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req createDebateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	d, err := g.svc.CreateDebate(r.Context(), r.PathValue("id"), req.Clusters)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, d)
}

func (g *Gateway) handleListDebates(w http.ResponseWriter, r *http.Request) {
	debates, err := g.svc.ListDebates(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if debates == nil {
		debates = []store.Debate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"debates": debates})
}

func (g *Gateway) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	view, err := g.svc.GetDebate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (g *Gateway) handleCancelDebate(w http.ResponseWriter, r *http.Request) {
	debateID := r.PathValue("id")
	if !g.svc.CancelDebate(debateID) {
		writeError(w, http.StatusNotFound, "no running task for debate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"debate_id": debateID, "status": store.StatusCancelled})
}

func (g *Gateway) handleGetConsensus(w http.ResponseWriter, r *http.Request) {
	view, err := g.svc.GetConsensus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cluster.ErrInsufficientData),
		errors.Is(err, cluster.ErrTooManyItems),
		errors.Is(err, debate.ErrNoSubmissions),
		errors.Is(err, debate.ErrEmptyClusters):
		return http.StatusUnprocessableEntity
	case errors.Is(err, debate.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
