package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any, err error) {
	if err != nil {
		log.WithError(err).Error("api query failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("writing response failed")
	}
}

// handleRecent handles /api/recent requests
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.GetRecent(intParam(r, "hours", 24))
	writeJSON(w, results, err)
}

// handleStats handles /api/stats requests
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(intParam(r, "hours", 24))
	writeJSON(w, stats, err)
}

// handleOutages handles /api/outages requests
func (s *Server) handleOutages(w http.ResponseWriter, r *http.Request) {
	outages, err := s.store.GetOutages(intParam(r, "days", 7))
	writeJSON(w, outages, err)
}

// handleLive handles /api/live requests
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.live == nil {
		http.Error(w, "live statistics unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, s.live.Live(), nil)
}
