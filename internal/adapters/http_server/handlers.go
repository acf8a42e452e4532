package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_pulse/internal/app"
	"review_pulse/internal/domain"
)

type Handlers struct {
	Analyses  *app.AnalysisService
	Assembler *app.Assembler
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/analyze", h.analyze)
	s.mux.Post("/v1/compare", h.compare)
	s.mux.Post("/v1/recommendations", h.recommend)
	s.mux.Get("/v1/businesses/{id}/analysis", h.businessAnalysis)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- stateless analysis ----

type analyzeRequest struct {
	Business     domain.Business  `json:"business"`
	ResponseRate float64          `json:"response_rate"`
	Reviews      []map[string]any `json:"reviews"`
}

type analyzeResponse struct {
	Context  domain.BusinessContext  `json:"context"`
	Enhanced domain.EnhancedAnalysis `json:"enhanced"`
	Dropped  int                     `json:"dropped_records"`
}

func (h *Handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Business.Name == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "business.name is required")
		return
	}

	norm := app.Normalize(req.Reviews)
	analysis := app.Aggregate(norm.Reviews)
	bctx := app.BuildContext(req.Business, norm.Reviews, analysis, req.ResponseRate)

	writeJSON(w, http.StatusOK, analyzeResponse{
		Context:  bctx,
		Enhanced: app.AggregateEnhanced(norm.Reviews),
		Dropped:  norm.Dropped,
	})
}

// ---- period comparison ----

type compareRequest struct {
	Previous []map[string]any `json:"previous"`
	Current  []map[string]any `json:"current"`
}

func (h *Handlers) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	prev := app.Normalize(req.Previous)
	cur := app.Normalize(req.Current)
	writeJSON(w, http.StatusOK, app.Compare(prev.Reviews, cur.Reviews))
}

// ---- AI recommendations ----

type recommendRequest struct {
	Business     domain.Business  `json:"business"`
	ResponseRate float64          `json:"response_rate"`
	Reviews      []map[string]any `json:"reviews"`
	Task         domain.Task      `json:"task"`
	Config       domain.AIConfig  `json:"config"`
}

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Task == "" {
		req.Task = domain.TaskRecommendations
	}

	norm := app.Normalize(req.Reviews)
	analysis := app.Aggregate(norm.Reviews)
	bctx := app.BuildContext(req.Business, norm.Reviews, analysis, req.ResponseRate)
	enhanced := app.AggregateEnhanced(norm.Reviews)
	bctx.Enhanced = &enhanced

	rec, err := h.Assembler.Recommend(r.Context(), bctx, req.Config, req.Task)
	if err != nil {
		var terr *domain.TemplateError
		switch {
		case errors.Is(err, domain.ErrUnknownTemplate):
			writeProblem(w, http.StatusUnprocessableEntity, "Unknown template", err.Error())
		case errors.As(err, &terr):
			writeProblem(w, http.StatusUnprocessableEntity, "Template error", err.Error())
		default:
			writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ---- stored-business analysis (cached, ETag'd) ----

func (h *Handlers) businessAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	snap, err := h.Analyses.BusinessAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "business not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal", "analysis failed")
		return
	}

	etag, body := calcETagAndBody(snap)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write businessAnalysis body")
	}
}
