package token

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFileName is the token file created under os.TempDir when no
// explicit path is configured. The token is regenerated on every deploy,
// so a temporary-directory location is intentional.
const DefaultFileName = "searchdeck-token"

// Authority owns the per-deployment secret and authenticates presented
// credentials against it. The secret lives in a plain-text file so it
// survives process restarts within one deploy; Regenerate overwrites it.
//
// Credentials that verify once are memoized for the process lifetime, so
// repeat requests from the same client skip the argon2 derivation.
type Authority struct {
	filePath string
	logger   *slog.Logger

	mu       sync.RWMutex
	verified map[string]struct{}
}

// Option configures an Authority.
type Option func(*Authority) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAuthority creates an Authority persisting its secret at filePath.
// An empty filePath selects DefaultFileName under os.TempDir.
func NewAuthority(filePath string, opts ...Option) (*Authority, error) {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), DefaultFileName)
	}

	a := &Authority{
		filePath: filePath,
		logger:   slog.Default(),
		verified: make(map[string]struct{}),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Token returns the current secret, generating and persisting one if the
// token file does not exist yet. Storage failures are wrapped in
// ErrTokenStorage and should abort startup.
func (a *Authority) Token() (string, error) {
	data, err := os.ReadFile(a.filePath)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %w", ErrTokenStorage, err)
	}
	return a.Regenerate()
}

// Regenerate creates a new random secret and overwrites the token file.
// Invoked once per deploy via the CLI, not per request. Memoized
// verifications are discarded since they no longer match the secret.
func (a *Authority) Regenerate() (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenStorage, err)
	}

	if err := os.WriteFile(a.filePath, []byte(secret), 0o600); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenStorage, err)
	}

	a.mu.Lock()
	a.verified = make(map[string]struct{})
	a.mu.Unlock()

	a.logger.Info("search token regenerated", "path", a.filePath)
	return secret, nil
}

// Verify reports whether the presented credential (an argon2 PHC string)
// was derived from the live secret. Routine mismatches and malformed
// credentials return false without error; only the memoized fast path or
// a fresh derivation can say yes.
func (a *Authority) Verify(presented string) bool {
	if presented == "" {
		return false
	}

	a.mu.RLock()
	_, ok := a.verified[presented]
	a.mu.RUnlock()
	if ok {
		return true
	}

	secret, err := a.Token()
	if err != nil {
		a.logger.Error("cannot load search token", "err", err)
		return false
	}

	valid, err := VerifyEncoded(presented, secret)
	if err != nil {
		a.logger.Debug("rejected malformed credential", "err", err)
		return false
	}
	if !valid {
		return false
	}

	a.mu.Lock()
	a.verified[presented] = struct{}{}
	a.mu.Unlock()
	return true
}

// newSecret produces a random lowercase base-36 secret, matching the
// short opaque tokens the front-end embeds at build time.
func newSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return new(big.Int).SetBytes(buf).Text(36), nil
}
