package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/shopspring/decimal"

	"playtab/internal/logging"
	"playtab/internal/ports"
	"playtab/internal/services"
	"playtab/internal/syncer"
)

// SSHServer serves the operator TUI over SSH so floor staff can attach
// from any terminal. All sessions share one coordinator and store.
type SSHServer struct {
	addr               string
	authorizedKeysPath string
	wishServer         *ssh.Server

	service     *services.SessionService
	reports     *services.ReportService
	coord       *syncer.Coordinator
	bus         ports.BroadcastBus
	defaultRate decimal.Decimal
}

// SSHConfig carries the wiring for the SSH surface.
type SSHConfig struct {
	Addr               string
	HostKeyPath        string
	AuthorizedKeysPath string
	Service            *services.SessionService
	Reports            *services.ReportService
	Coordinator        *syncer.Coordinator
	Bus                ports.BroadcastBus
	DefaultRate        decimal.Decimal
}

// NewSSHServer creates the wish server. The host key is generated on
// first start if missing.
func NewSSHServer(cfg SSHConfig) (*SSHServer, error) {
	s := &SSHServer{
		addr:               cfg.Addr,
		authorizedKeysPath: cfg.AuthorizedKeysPath,
		service:            cfg.Service,
		reports:            cfg.Reports,
		coord:              cfg.Coordinator,
		bus:                cfg.Bus,
		defaultRate:        cfg.DefaultRate,
	}

	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create host key directory: %w", err)
	}

	// Middleware executes in reverse order (last to first).
	wishServer, err := wish.NewServer(
		wish.WithAddress(cfg.Addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := getKeyFingerprint(key)
			authorized := isKeyAuthorized(key, s.authorizedKeysPath)
			if authorized {
				logging.Logger.Info("SSH key authenticated",
					"user", ctx.User(),
					"fingerprint", fingerprint,
					"key_type", key.Type())
			} else {
				logging.Logger.Warn("Unauthorized SSH key",
					"user", ctx.User(),
					"fingerprint", fingerprint,
					"key_type", key.Type())
			}
			return authorized
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			activeterm.Middleware(), // Require PTY
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}

	s.wishServer = wishServer
	return s, nil
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *SSHServer) Start(ctx context.Context) error {
	logging.Logger.Info("Starting SSH server", "address", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.wishServer.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("SSH server error: %w", err)
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.wishServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown SSH server: %w", err)
	}
	return nil
}
