package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/tomz197/starhero/internal/audio"
	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/ghost"
	"github.com/tomz197/starhero/internal/logging"
	"github.com/tomz197/starhero/internal/loop"
	"github.com/tomz197/starhero/internal/sim"
	"github.com/tomz197/starhero/internal/store"
)

func main() {
	configPath := flag.String("config", "", "YAML file merged over the defaults")
	logPath := flag.String("log", "starhero.log", "log file (the terminal is busy with the game)")
	pilot := flag.String("pilot", config.GetEnv("USER", "pilot"), "pilot name shown to other ships")
	dump := flag.Bool("dump-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dump {
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logging.New(logFile, cfg.Log.Level, cfg.Log.Console)

	if err := run(cfg, *pilot, log); err != nil {
		log.Error().Err(err).Msg("game error")
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, pilot string, log zerolog.Logger) error {
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path, logging.Component(log, "store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	deps := sim.Deps{Store: st, Log: log, Pilot: pilot}

	if cfg.Audio.Enabled {
		sink := audio.NewBeepSink(beep.SampleRate(cfg.Audio.SampleRate))
		if err := audio.Play(sink); err != nil {
			log.Warn().Err(err).Msg("audio unavailable, playing silently")
		} else {
			deps.Sink = sink
			defer audio.Stop()
		}
	}

	if cfg.Ghost.Listen != "" {
		ch, err := ghost.ListenUDP(cfg.Ghost.Listen, cfg.Ghost.Peers, logging.Component(log, "ghost"))
		if err != nil {
			log.Warn().Err(err).Str("listen", cfg.Ghost.Listen).Msg("ghost broadcast disabled")
		} else {
			deps.Ghosts = ch
		}
	}

	core, err := sim.New(cfg, deps)
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	err = loop.Run(ctx, core, bufio.NewReader(os.Stdin), os.Stdout, loop.Options{Config: cfg, Log: log})
	_ = term.Restore(fd, oldState)
	if err != nil {
		return err
	}

	ledger := core.Ledger()
	fmt.Printf("score %d (best %d), %d achievements\n\n", ledger.Score(), ledger.HighScore(), ledger.UnlockedCount())
	return ledger.WriteSummary(os.Stdout)
}
