package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"playtab/internal/paths"
	"playtab/internal/server"
)

// ServeCmd serves the TUI over SSH
type ServeCmd struct {
	Addr           string `help:"SSH listen address" default:"0.0.0.0:2222"`
	HostKey        string `help:"Path to the SSH host key"`
	AuthorizedKeys string `help:"Path to the authorized_keys file"`
}

// Run starts the SSH server and blocks until shutdown
func (s *ServeCmd) Run(cli *CLI) error {
	addr := s.Addr
	if cli.Settings().SSHAddr != "" && s.Addr == "0.0.0.0:2222" {
		addr = cli.Settings().SSHAddr
	}
	hostKey := s.HostKey
	if hostKey == "" {
		hostKey = cli.Settings().HostKeyPath
	}
	if hostKey == "" {
		hostKey = paths.GetHostKeyPath()
	}
	authorizedKeys := s.AuthorizedKeys
	if authorizedKeys == "" {
		authorizedKeys = cli.Settings().AuthorizedKeysPath
	}
	if authorizedKeys == "" {
		authorizedKeys = paths.GetAuthorizedKeysPath()
	}

	sshServer, err := server.NewSSHServer(server.SSHConfig{
		Addr:               addr,
		HostKeyPath:        hostKey,
		AuthorizedKeysPath: authorizedKeys,
		Service:            cli.Container.SessionService,
		Reports:            cli.Container.ReportService,
		Coordinator:        cli.Container.Coordinator,
		Bus:                cli.Container.Bus,
		DefaultRate:        cli.Settings().EffectiveHourlyRate(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cli.Container.Coordinator.Run(ctx) })
	g.Go(func() error { return sshServer.Start(ctx) })
	return g.Wait()
}

// ServeHTTPCmd serves the read-only JSON API
type ServeHTTPCmd struct {
	Addr string `help:"HTTP listen address" default:"127.0.0.1:8137"`
}

// Run starts the HTTP server and blocks until shutdown
func (s *ServeHTTPCmd) Run(cli *CLI) error {
	addr := s.Addr
	if cli.Settings().HTTPAddr != "" && s.Addr == "127.0.0.1:8137" {
		addr = cli.Settings().HTTPAddr
	}

	httpServer, err := server.NewHTTPServer(addr,
		cli.Container.Coordinator, cli.Container.ReportService)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cli.Container.Coordinator.Run(ctx) })
	g.Go(func() error { return httpServer.Start(ctx) })
	return g.Wait()
}
