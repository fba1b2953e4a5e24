// Package btreeapi serves a read-only debug and metrics HTTP surface
// over a tree, grounded on the teacher's pkg/api.StartServer: a chi
// router, the same CORS and logging/recoverer middleware stack, and
// Prometheus metrics mounted at /metrics via promhttp. Unlike the
// teacher's server it exposes no command dispatcher or authenticated
// write routes — introspection only, per this repo's non-goals.
package btreeapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/kvbtree/pkg/btree"
)

// Server exposes introspection endpoints over a single tree.
type Server struct {
	tree *btree.Tree
}

// NewServer returns a Server backed by tree.
func NewServer(tree *btree.Tree) *Server {
	return &Server{tree: tree}
}

// Router builds the HTTP handler: /metrics plus read-only debug routes
// under /debug.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/debug", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/flatten", s.handleFlatten)
		r.Get("/check", s.handleCheck)
	})

	return r
}

// ListenAndServe starts the HTTP server on addr (e.g. ":8090").
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Router())
}

type statsResponse struct {
	Height      int    `json:"height"`
	MaxNodeSize int    `json:"max_node_size"`
	MinFill     int    `json:"min_fill"`
	Type        string `json:"type"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Height:      s.tree.Height(),
		MaxNodeSize: s.tree.MaxNodeSize(),
		MinFill:     s.tree.MinFill(),
		Type:        s.tree.Type().Name,
	})
}

func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	keys, err := s.tree.Flatten()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	formatted := make([]string, len(keys))
	for i, key := range keys {
		formatted[i] = s.tree.Type().Format(key)
	}
	writeJSON(w, http.StatusOK, formatted)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	status, err := s.tree.IsBalanced()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status.String()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprint(err)})
}
