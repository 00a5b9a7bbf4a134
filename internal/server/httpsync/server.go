// Package httpsync exposes the pairing/sync protocol as an HTTP service with
// a hard-bounded lifetime, plus the host-side control surface the UI layer
// drives (start/stop, remaining time, pending batches, approval).
package httpsync

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbitapp/orbit/internal/config"
	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/ledger"
	"github.com/orbitapp/orbit/internal/model"
	"github.com/orbitapp/orbit/internal/store"
	"github.com/orbitapp/orbit/internal/syncer"
)

const (
	serviceName    = "orbit-sync"
	serviceVersion = "1.0.0"

	shutdownGrace = 5 * time.Second
)

// StartInfo is returned to the UI when a pairing run begins. ExpiresIn and
// AutoCloseIn are in seconds.
type StartInfo struct {
	Pin         string `json:"pin"`
	URL         string `json:"url"`
	ExpiresIn   int    `json:"expiresIn"`
	AutoCloseIn int    `json:"autoCloseIn"`
}

// Server owns the mutable state of one pairing run: the session registry, the
// pending-approval queue and the running flag. The registry and queue carry
// their own locks; the server mutex guards only the lifecycle fields. All of
// it is bound to one run and cleared on shutdown.
type Server struct {
	log      *zap.Logger
	store    *store.Store
	cfg      config.SyncConfig
	registry *syncer.Registry
	pending  *syncer.PendingStore
	approver *syncer.Approver

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	shutdown  func(reason string) // idempotent for the current run
	done      chan struct{}
}

// New constructs a stopped server.
func New(st *store.Store, pipeline ledger.Pipeline, cfg config.SyncConfig, log *zap.Logger) *Server {
	registry := syncer.NewRegistry()
	pending := syncer.NewPendingStore()
	return &Server{
		log:      log,
		store:    st,
		cfg:      cfg,
		registry: registry,
		pending:  pending,
		approver: syncer.NewApprover(pending, pipeline, log),
	}
}

// Start binds the listener on all interfaces, creates the run's single
// pairing session and arms the auto-shutdown watchdog. Port 0 selects the
// configured default.
func (s *Server) Start(port int) (StartInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return StartInfo{}, errs.ErrServerRunning
	}
	if port == 0 {
		port = s.cfg.Port
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return StartInfo{}, fmt.Errorf("listen: %w", err)
	}

	pin := syncer.GeneratePin()
	s.registry.StartSession(pin, s.cfg.PinTTL)

	httpSrv := &http.Server{Handler: s.routes()}
	done := make(chan struct{})
	var once sync.Once
	var watchdog *time.Timer

	shutdown := func(reason string) {
		once.Do(func() {
			s.log.Info("sync server shutting down", zap.String("reason", reason))
			watchdog.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				s.log.Warn("graceful shutdown incomplete, closing", zap.Error(err))
				_ = httpSrv.Close()
			}

			s.registry.Clear()
			s.pending.Clear()

			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			close(done)
			s.log.Info("sync server stopped")
		})
	}
	// the watchdog always fires, active or not; it races the explicit stop
	// into the same idempotent transition
	watchdog = time.AfterFunc(s.cfg.ServerTTL, func() { shutdown("watchdog") })

	s.running = true
	s.startedAt = time.Now()
	s.shutdown = shutdown
	s.done = done

	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("sync server error", zap.Error(err))
			shutdown("serve error")
		}
	}()

	url := fmt.Sprintf("http://%s:%d", localIP(), port)
	s.log.Info("sync server listening",
		zap.String("url", url),
		zap.Duration("pinTTL", s.cfg.PinTTL),
		zap.Duration("serverTTL", s.cfg.ServerTTL),
	)
	return StartInfo{
		Pin:         pin,
		URL:         url,
		ExpiresIn:   int(s.cfg.PinTTL.Seconds()),
		AutoCloseIn: int(s.cfg.ServerTTL.Seconds()),
	}, nil
}

// Stop triggers the same shutdown transition as the watchdog and waits for it
// to complete. Stopping twice, or racing the watchdog, is safe.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errs.ErrServerNotRunning
	}
	shutdown := s.shutdown
	done := s.done
	s.mu.Unlock()

	shutdown("stop requested")
	<-done
	return nil
}

// Done reports the current run's termination channel, closed once shutdown
// completes (explicit stop or watchdog).
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// RemainingTime returns how long until the watchdog closes the server.
func (s *Server) RemainingTime() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0, errs.ErrServerNotRunning
	}
	remaining := s.cfg.ServerTTL - time.Since(s.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ListPending returns the batches awaiting approval.
func (s *Server) ListPending() []model.PendingSyncData {
	return s.pending.List()
}

// Approve resolves one pending batch; see syncer.Approver.Resolve.
func (s *Server) Approve(batchID string, approved bool, resolutions map[string]model.ConflictResolution) (model.ApprovalResult, error) {
	return s.approver.Resolve(batchID, approved, resolutions)
}

// localIP finds the local outbound interface address; the UDP dial sends no
// packets. Falls back to localhost when the host is offline.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "localhost"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "localhost"
}
