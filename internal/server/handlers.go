package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/pkg/catalog"
)

// HealthResponse is the JSON response structure for health checks.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleAll serves every stored document, slots labelled by the schema.
func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	docs, err := s.catalog.ListAll(ctx)
	if err != nil {
		s.writeFailure(w, r, s.routes.All, err)
		return
	}

	log.Printf("[INFO] All courses: %d documents", len(docs))
	s.writeResult(w, r, s.routes.All, catalog.DocumentList{Schema: s.schema, Documents: docs})
}

// handleSorted serves the flattened catalog ordered by description.
func (s *Server) handleSorted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	courses, err := s.catalog.ListFlattenedSorted(ctx)
	if err != nil {
		s.writeFailure(w, r, s.routes.Sorted, err)
		return
	}

	s.writeResult(w, r, s.routes.Sorted, courses)
}

// handleTagged serves description and tags of courses matching the route's tags.
func (s *Server) handleTagged(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	tagged, err := s.catalog.ListByTags(ctx, s.routes.Tagged.Tags)
	if err != nil {
		s.writeFailure(w, r, s.routes.Tagged, err)
		return
	}

	s.writeResult(w, r, s.routes.Tagged, tagged)
}

// handleHealthz returns 200 if the store answers a ping, 503 otherwise.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Store:  "disconnected",
			Error:  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Store:  "connected",
	})
}

// writeFailure logs the error and answers 500 with the route's error body.
// The route's fixed message, when set, replaces the error text.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, route *config.RouteConfig, err error) {
	log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)

	message := route.ErrorMessage
	if message == "" {
		message = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{route.ErrorKey: message})
}

// writeResult answers 200 with body, or the route's failure body when body
// cannot be encoded. Nothing is written before encoding succeeds.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, route *config.RouteConfig, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		s.writeFailure(w, r, route, fmt.Errorf("failed to encode response: %w", err))
		return
	}
	writeBody(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("[ERROR] Failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, status, data)
}

func writeBody(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
