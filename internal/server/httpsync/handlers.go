package httpsync

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
	"github.com/orbitapp/orbit/internal/syncer"
)

// routes builds the protocol router. Cross-origin is maximally permissive:
// the pairing partner is an unauthenticated LAN device discovered out of
// band, and the security boundary is the PIN/token exchange, not the origin.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.Get("/sync/ping", s.handlePing)
	r.Post("/sync/auth", s.handleAuth)
	r.Post("/sync/data", s.handleData)
	r.Get("/sync/status", s.handleStatus)
	return r
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// handleAuth exchanges a PIN for the session's bearer token. Authentication
// failures are protocol outcomes, not transport errors: the reply stays 200
// with success=false.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req model.SyncAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.SyncAuthResponse{Message: "malformed request"})
		return
	}

	token, remaining, err := s.registry.Authenticate(req.Pin, req.DeviceName)
	switch {
	case errors.Is(err, errs.ErrExpiredPin):
		writeJSON(w, http.StatusOK, model.SyncAuthResponse{Message: "PIN expired"})
	case errors.Is(err, errs.ErrInvalidPin):
		writeJSON(w, http.StatusOK, model.SyncAuthResponse{Message: "Invalid PIN"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, model.SyncAuthResponse{Message: "internal error"})
	default:
		writeJSON(w, http.StatusOK, model.SyncAuthResponse{
			Success:   true,
			Token:     token,
			ExpiresIn: int64(remaining.Seconds()),
			Message:   "Authentication successful",
		})
	}
}

// handleData receives one batch. The bearer token is checked before the body
// is evaluated; conflict detection runs only for authenticated pushes, and
// detected conflicts are returned in a successful response.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, model.SyncDataResponse{Message: "missing bearer token"})
		return
	}
	if _, ok := s.registry.ValidateToken(token); !ok {
		writeJSON(w, http.StatusUnauthorized, model.SyncDataResponse{Message: "invalid or expired token"})
		return
	}

	var payload model.SyncDataPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, model.SyncDataResponse{Message: "malformed request"})
		return
	}

	wallet, err := s.store.ReadWallet()
	if err != nil {
		s.log.Error("snapshot read failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.SyncDataResponse{Message: "internal error"})
		return
	}
	items, err := s.store.ReadItems()
	if err != nil {
		s.log.Error("snapshot read failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.SyncDataResponse{Message: "internal error"})
		return
	}

	conflicts := syncer.Detect(payload, syncer.Snapshot{Wallet: wallet, Items: items})
	if conflicts == nil {
		conflicts = []model.Conflict{}
	}

	batchID := s.pending.Enqueue(payload, conflicts)
	s.log.Info("sync batch received",
		zap.String("batch", batchID),
		zap.String("device", payload.DeviceName),
		zap.Int("transactions", len(payload.Transactions)),
		zap.Int("conflicts", len(conflicts)),
	)

	writeJSON(w, http.StatusOK, model.SyncDataResponse{
		Success:         true,
		PendingApproval: true,
		Conflicts:       conflicts,
		Message:         "Data received, pending user approval",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"active":         running,
		"activeSessions": s.registry.ActiveCount(),
		"pendingData":    s.pending.Len(),
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
