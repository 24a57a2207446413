package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/config"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/database"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/discovery"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/sse"
	"github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-API-Key"

// DiscoveryRunner is the slice of the discovery service the API needs
type DiscoveryRunner interface {
	Run(ctx context.Context) error
	GetMetrics() string
}

// Server holds the HTTP handlers and their collaborators
type Server struct {
	config *config.Config
	repo   database.RepositoryInterface
	runner DiscoveryRunner
	broker sse.Broker
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, repo database.RepositoryInterface, runner DiscoveryRunner, broker sse.Broker) *Server {
	return &Server{
		config: cfg,
		repo:   repo,
		runner: runner,
		broker: broker,
	}
}

// Router builds the HTTP router with all endpoints registered
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/", s.handleWelcome).Methods("GET")
	router.HandleFunc("/api/threats", s.handleListThreats).Methods("GET")
	router.HandleFunc("/api/threats/", s.handleListThreats).Methods("GET")
	router.HandleFunc("/api/notifications", s.handleNotifications).Methods("GET")
	router.HandleFunc("/api/discover-threats", s.handleDiscoverThreats).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+apiKeyHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Maritime Threats API"})
}

func (s *Server) handleListThreats(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", database.DefaultListLimit)

	threats, err := s.repo.ListThreats(r.Context(), skip, limit)
	if err != nil {
		logrus.Errorf("Failed to list threats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to list threats"})
		return
	}

	writeJSON(w, http.StatusOK, threats)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "streaming unsupported"})
		return
	}

	sse.SetHeaders(w)
	flusher.Flush()

	events, cleanup := s.broker.Subscribe(r.Context())
	defer cleanup()

	logrus.Infof("Stream client connected from %s", r.RemoteAddr)

	heartbeat := time.NewTicker(sse.DefaultHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				logrus.Info("Stream subscription closed")
				return
			}
			if err := sse.WriteEvent(w, event); err != nil {
				logrus.Debugf("Stream write failed (client likely disconnected): %v", err)
				return
			}
		case <-heartbeat.C:
			if err := sse.WriteHeartbeat(w); err != nil {
				logrus.Debug("Stream heartbeat failed (client disconnected)")
				return
			}
		case <-r.Context().Done():
			// Normal termination, not an error
			logrus.Info("Stream client disconnected")
			return
		}
	}
}

func (s *Server) handleDiscoverThreats(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(apiKeyHeader)
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.config.APISecretKey)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid API Key"})
		return
	}

	if err := s.runner.Run(r.Context()); err != nil {
		if errors.Is(err, discovery.ErrRunInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{"detail": "A discovery run is already in progress"})
			return
		}
		logrus.Errorf("Manual discovery trigger failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "discovery run failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Threat discovery initiated."})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.runner.GetMetrics()))
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return defaultValue
}
