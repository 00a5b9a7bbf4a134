// Package syncer implements the device-pairing synchronization subsystem:
// the PIN -> token session registry, the conflict detector that reconciles an
// incoming batch against the ledger, the pending-approval queue, and the
// approval service that merges an approved batch through the ledger pipeline.
package syncer

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
)

// Registry holds the pairing sessions of one server run. A single mutex
// covers the session map so concurrent authentication requests and the
// watchdog cannot race into an inconsistent state.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*model.PairingSession
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*model.PairingSession{}}
}

// GeneratePin returns a uniformly random zero-padded 6-digit PIN in
// [100000, 999999].
func GeneratePin() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand reading from the OS does not fail in practice
		panic(fmt.Sprintf("generate pin: %v", err))
	}
	return fmt.Sprintf("%06d", 100000+n.Int64())
}

// generateToken derives a capability token from the pin, the current
// millisecond timestamp and a fresh random identifier. Unforgeability rests on
// the randomness of the inputs, not on a shared secret; the trust boundary is
// "knows the PIN shown on the paired device".
func generateToken(pin string) string {
	data := fmt.Sprintf("%s-%d-%s", pin, time.Now().UnixMilli(), model.NewID())
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// StartSession creates a session for pin, valid for ttl of authentication
// attempts. The authentication window is independent of the server lifetime.
func (r *Registry) StartSession(pin string, ttl time.Duration) model.PairingSession {
	now := time.Now().UnixMilli()
	s := &model.PairingSession{
		Pin:       pin,
		CreatedAt: now,
		ExpiresAt: now + ttl.Milliseconds(),
		IsActive:  true,
	}
	r.mu.Lock()
	r.sessions[pin] = s
	r.mu.Unlock()
	return *s
}

// Authenticate looks up an active session by pin and issues its token. A pin
// past its window deactivates the session and fails with ErrExpiredPin.
// Re-authenticating a session that already holds a token returns the same
// token rather than rotating it. Returns the token and the remaining
// authentication window.
func (r *Registry) Authenticate(pin, deviceName string) (string, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[pin]
	if !ok || !s.IsActive {
		return "", 0, errs.ErrInvalidPin
	}

	now := time.Now().UnixMilli()
	if now > s.ExpiresAt {
		s.IsActive = false
		return "", 0, errs.ErrExpiredPin
	}

	if s.Token == "" {
		s.Token = generateToken(s.Pin)
		s.DeviceName = deviceName
	}
	remaining := time.Duration(s.ExpiresAt-now) * time.Millisecond
	return s.Token, remaining, nil
}

// ValidateToken returns the session holding token iff it is active and not
// expired.
func (r *Registry) ValidateToken(token string) (model.PairingSession, bool) {
	if token == "" {
		return model.PairingSession{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UnixMilli()
	for _, s := range r.sessions {
		if s.Token == token && s.IsActive && s.ExpiresAt > now {
			return *s, true
		}
	}
	return model.PairingSession{}, false
}

// ActiveCount reports the number of active sessions.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.IsActive {
			n++
		}
	}
	return n
}

// Clear drops all sessions. Called as part of server shutdown; no stale
// pin or token remains valid afterwards.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.sessions = map[string]*model.PairingSession{}
	r.mu.Unlock()
}
