package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/fd1az/mempool-block/internal/config"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/pkg/ui"
)

type sessionCounter struct {
	active atomic.Int64
}

func (c *sessionCounter) Active() int64 { return c.active.Load() }

// runSSH serves one page, with its own overlay controller, per SSH session.
func runSSH(ctx context.Context, cfg config.SSHConfig, deps ui.Deps, sessions *sessionCounter, log logger.LoggerInterface) error {
	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				pty, _, _ := s.Pty()
				page := ui.NewSession(s.Context(), deps, bubbletea.MakeRenderer(s), s, pty.Window.Width, pty.Window.Height)
				page.Start()

				sessions.active.Add(1)
				context.AfterFunc(s.Context(), func() { sessions.active.Add(-1) })
				log.Info(ctx, "ssh session opened", "user", s.User(), "remote", s.RemoteAddr().String())

				return page.Model(), ui.ProgramOptions()
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "ssh server listening", "addr", cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down ssh server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
