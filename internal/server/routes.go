package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aidev-education/contentindex/internal/config"
	"github.com/aidev-education/contentindex/internal/indexer"
	"github.com/aidev-education/contentindex/internal/search"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/content-search", s.handleSearchGet)
		r.Post("/content-search", s.handleSearchPost)
		r.Get("/semantic-search", s.handleSemanticSearch)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/index-content", s.handleIndexContent)
			r.Get("/indexing-stats", s.handleIndexingStats)
			r.Get("/index-progress", s.handleIndexProgress)
			r.Get("/index-export", s.handleIndexExport)
			r.Post("/index-import", s.handleIndexImport)
		})
	})
}

// requireAdmin gates admin routes behind a bearer token outside development.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Environment == config.EnvDevelopment {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "admin authorization required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// chunkPayload is a ContentChunk with the embedding stripped for transport.
type chunkPayload struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Section  string   `json:"section,omitempty"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords,omitempty"`
	Priority float64  `json:"priority,omitempty"`
	Score    float64  `json:"score"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Mode    search.Mode    `json:"mode"`
	Section string         `json:"section,omitempty"`
	Results []chunkPayload `json:"results"`
}

// searchRequest is the POST body carrying the full hybrid tuning knobs.
type searchRequest struct {
	Query         string   `json:"query"`
	Limit         int      `json:"limit"`
	Section       string   `json:"section"`
	Threshold     *float64 `json:"threshold"`
	Mode          string   `json:"mode"`
	WeightVector  *float64 `json:"weight_vector"`
	WeightKeyword *float64 `json:"weight_keyword"`
	Boosts        *struct {
		Title    *float64 `json:"title"`
		Keyword  *float64 `json:"keyword"`
		Priority *float64 `json:"priority"`
	} `json:"boosts"`
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.baseOptions()
	opts.Query = q.Get("query")
	opts.Mode = search.ParseMode(q.Get("mode"))
	opts.Section = q.Get("section")
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.ParseFloat(q.Get("threshold"), 64); err == nil {
		opts.Threshold = v
	}
	s.runSearch(w, r, opts)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := s.baseOptions()
	opts.Query = req.Query
	opts.Mode = search.ParseMode(req.Mode)
	opts.Section = req.Section
	opts.Limit = req.Limit
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.WeightVector != nil || req.WeightKeyword != nil {
		weights := *opts.Weights
		if req.WeightVector != nil {
			weights.Vector = *req.WeightVector
		}
		if req.WeightKeyword != nil {
			weights.Keyword = *req.WeightKeyword
		}
		opts.Weights = &weights
	}
	if req.Boosts != nil {
		boosts := *opts.Boosts
		if req.Boosts.Title != nil {
			boosts.Title = *req.Boosts.Title
		}
		if req.Boosts.Keyword != nil {
			boosts.Keyword = *req.Boosts.Keyword
		}
		if req.Boosts.Priority != nil {
			boosts.Priority = *req.Boosts.Priority
		}
		opts.Boosts = &boosts
	}
	s.runSearch(w, r, opts)
}

// handleSemanticSearch is the semantic-only alias; it runs through the same
// engine as /api/content-search rather than a separate embedding stack.
func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.baseOptions()
	opts.Query = q.Get("query")
	opts.Mode = search.ModeSemantic
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = v
	}
	s.runSearch(w, r, opts)
}

// baseOptions seeds search options from the configured defaults.
func (s *Server) baseOptions() search.Options {
	weights := search.Weights{
		Vector:  s.cfg.Search.WeightVector,
		Keyword: s.cfg.Search.WeightKeyword,
	}
	boosts := search.Boosts{
		Title:    s.cfg.Search.BoostTitle,
		Keyword:  s.cfg.Search.BoostKeyword,
		Priority: s.cfg.Search.BoostPriority,
	}
	return search.Options{
		Limit:     s.cfg.Search.DefaultLimit,
		Threshold: s.cfg.Search.ScoreThreshold,
		Weights:   &weights,
		Boosts:    &boosts,
	}
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, opts search.Options) {
	if strings.TrimSpace(opts.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	if err := s.ensureIndexed(r.Context()); err != nil {
		log.Printf("server: lazy indexing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "indexing failed")
		return
	}

	results, err := s.engine.Search(r.Context(), opts)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		log.Printf("server: search failed: %v", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	payload := searchResponse{
		Query:   opts.Query,
		Mode:    opts.Mode,
		Section: opts.Section,
		Results: make([]chunkPayload, 0, len(results)),
	}
	for _, res := range results {
		payload.Results = append(payload.Results, chunkPayload{
			ID:       res.Chunk.ID,
			Path:     res.Chunk.Path,
			Title:    res.Chunk.Title,
			Section:  res.Chunk.Section,
			Text:     res.Chunk.Text,
			Keywords: res.Chunk.Keywords,
			Priority: res.Chunk.Priority,
			Score:    res.Score,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

type indexContentRequest struct {
	UseAPI *bool `json:"use_api"`
}

func (s *Server) handleIndexContent(w http.ResponseWriter, r *http.Request) {
	useAPI := s.useAPI
	if r.Body != nil && r.ContentLength != 0 {
		var req indexContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UseAPI != nil {
			useAPI = *req.UseAPI && s.useAPI
		}
	}

	result, err := s.indexer.IndexAll(r.Context(), indexer.Options{UseAPI: useAPI})
	if err != nil {
		log.Printf("server: index-content failed: %v", err)
		writeError(w, http.StatusInternalServerError, "indexing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pages_indexed":  result.PagesIndexed,
		"chunks_created": result.ChunksCreated,
		"vectors_stored": result.VectorsStored,
		"chunks_failed":  result.ChunksFailed,
		"use_api":        useAPI,
	})
}

func (s *Server) handleIndexingStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleIndexExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="contentindex-snapshot.json"`)
	if err := s.store.Export(w); err != nil {
		log.Printf("server: index export: %v", err)
		writeError(w, http.StatusInternalServerError, "export failed")
	}
}

func (s *Server) handleIndexImport(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Import(r.Body); err != nil {
		log.Printf("server: index import: %v", err)
		writeError(w, http.StatusBadRequest, "invalid snapshot")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
