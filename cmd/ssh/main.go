package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog"

	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/draw"
	"github.com/tomz197/starhero/internal/ghost"
	"github.com/tomz197/starhero/internal/logging"
	"github.com/tomz197/starhero/internal/loop"
	"github.com/tomz197/starhero/internal/sim"
	"github.com/tomz197/starhero/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

// host holds what every session shares: configuration, the progress store
// and the ghost hub.
type host struct {
	cfg   config.Config
	log   zerolog.Logger
	store store.Store
	hub   *ghost.Hub

	ctx      context.Context
	sessions sync.WaitGroup
}

func main() {
	configPath := flag.String("config", "", "YAML file merged over the defaults")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Console)

	hostAddr := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	log.Info().Str("host", hostAddr).Str("port", port).Str("host_key", hostKeyPath).Msg("ssh config")

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path, logging.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	ctx, cancelSessions := context.WithCancel(context.Background())
	h := &host{cfg: cfg, log: log, store: st, hub: ghost.NewHub(), ctx: ctx}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(hostAddr, port)),
		wish.WithMiddleware(
			h.gameMiddleware,
			activeterm.Middleware(),
			wishlogging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("addr", s.Addr).Msg("starting ssh server")
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	log.Info().Int("pilots", h.hub.Members()).Msg("shutting down server")

	// Stop every running game so progress is flushed before the store closes
	cancelSessions()
	waitTimeout(&h.sessions, 15*time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// gameMiddleware runs one core per SSH session.
func (h *host) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		h.sessions.Add(1)
		defer h.sessions.Done()

		log := h.log.With().Str("user", sess.User()).Logger()
		log.Info().Str("term", pty.Term).Int("width", pty.Window.Width).Int("height", pty.Window.Height).Msg("new game session")

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		if err := h.play(sess, sizeTracker, log); err != nil {
			log.Error().Err(err).Msg("game error")
		}

		log.Info().Msg("session ended")
		next(sess)
	}
}

func (h *host) play(sess ssh.Session, size *sizeTracker, log zerolog.Logger) error {
	core, err := sim.New(h.cfg, sim.Deps{
		Store:  pilotStore(h.store, sess.User()),
		Log:    log,
		Ghosts: h.hub.Join(),
		Pilot:  sess.User(),
	})
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()
	go func() {
		select {
		case <-sess.Context().Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	err = loop.Run(ctx, core, bufio.NewReader(sess), sess, loop.Options{
		Config: h.cfg,
		Size:   size.getSize,
		Log:    log,
	})
	if err != nil {
		return err
	}

	ledger := core.Ledger()
	fmt.Fprintf(sess, "score %d (best %d), %d achievements\r\n", ledger.Score(), ledger.HighScore(), ledger.UnlockedCount())
	return nil
}

func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize

// pilotStore scopes persisted progress to one SSH user.
func pilotStore(s store.Store, user string) store.Store {
	return store.Namespace(s, user)
}
