package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/quietloop/noisebox/internal/config"
	"github.com/quietloop/noisebox/internal/controller"
	"github.com/quietloop/noisebox/internal/library"
	"github.com/quietloop/noisebox/internal/localcli"
	"github.com/quietloop/noisebox/internal/logging"
	"github.com/quietloop/noisebox/internal/mediaserver"
	"github.com/quietloop/noisebox/internal/player"
	"github.com/quietloop/noisebox/internal/transport"
)

// commandServerPath is where the Media Server's websocket handler is
// mounted (spec §6).
const commandServerPath = "/noisebox/command_server/v1"

// serverShutdownGrace bounds how long in-flight requests get to finish
// during a graceful shutdown before the process exits anyway.
const serverShutdownGrace = 5 * time.Second

func runMediaplayer(args []string) int {
	fs := flag.NewFlagSet("mediaplayer", flag.ContinueOnError)
	configPath := fs.String("config", getDefaultConfigPath(), "path to configuration file")
	debug := fs.Bool("debug", false, "enable debug mode (verbose errors sent to clients)")
	serverLogLevel := fs.String("server_log_level", "", "override logging.server_level in the config (stored only; not applied to the transport's logger)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if *debug {
		cfg.Debug = true
	}
	if *serverLogLevel != "" {
		cfg.Logging.ServerLevel = *serverLogLevel
	}

	level := os.Getenv("LOGLEVEL")
	if level == "" {
		level = cfg.Logging.Level
	}
	logging.Init(logging.Config{Level: level, Pretty: true})
	log := logging.WithComponent("mediaplayer")

	lib, err := library.LoadFile(cfg.Library.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Library.Path).Msg("starting with an empty library")
		lib = library.New()
	}

	p := player.NewStub()
	ctrl := controller.New(lib, p)

	mux := transport.NewMuxer()
	srv := mediaserver.New(ctrl, lib, cfg.Debug, mux, commandServerPath)
	if err := mux.Register(commandServerPath, srv); err != nil {
		log.Error().Err(err).Msg("failed to register command server handler")
		return 1
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount(commandServerPath, mux)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := localcli.New(os.Stdin, os.Stdout)
	commands := console.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("command server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		defer console.Close()
		for {
			select {
			case <-gctx.Done():
				return nil
			case cmd, ok := <-commands:
				if !ok {
					return nil
				}
				handleConsoleCommand(console, ctrl, lib, cmd)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownGrace)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	if err := library.SaveFile(cfg.Library.Path, lib); err != nil {
		log.Error().Err(err).Msg("failed to save library on shutdown")
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("mediaplayer exited with error")
		return 1
	}
	return 0
}

// handleConsoleCommand dispatches one local console line to the
// Controller, grounded in original_source/localcli/console.py's
// command-name-to-handler table.
func handleConsoleCommand(console *localcli.Console, ctrl *controller.Controller, lib *library.Library, cmd localcli.Command) {
	switch cmd.Name {
	case "play":
		if len(cmd.Args) != 1 {
			console.Write("usage: play <name>")
			return
		}
		if err := ctrl.Play(cmd.Args[0]); err != nil {
			console.Write("error: " + err.Error())
		}
	case "queue":
		if len(cmd.Args) != 1 {
			console.Write("usage: queue <name>")
			return
		}
		if err := ctrl.Queue(cmd.Args[0]); err != nil {
			console.Write("error: " + err.Error())
		}
	case "queue_repeat":
		if len(cmd.Args) < 1 || len(cmd.Args) > 2 {
			console.Write("usage: queue_repeat <name> [times]")
			return
		}
		var times *int
		if len(cmd.Args) == 2 {
			n, err := strconv.Atoi(cmd.Args[1])
			if err != nil {
				console.Write("error: times must be an integer")
				return
			}
			times = &n
		}
		if err := ctrl.QueueRepeat(cmd.Args[0], times); err != nil {
			console.Write("error: " + err.Error())
		}
	case "interrupt":
		if len(cmd.Args) != 1 {
			console.Write("usage: interrupt <name>")
			return
		}
		if err := ctrl.InterruptWith(cmd.Args[0]); err != nil {
			console.Write("error: " + err.Error())
		}
	case "next":
		if err := ctrl.NextSong(); err != nil {
			console.Write("error: " + err.Error())
		}
	case "toggle":
		ctrl.TogglePause()
	case "stop":
		ctrl.Stop()
	case "devices":
		snapshot := ctrl.ListDevices()
		console.Write(fmt.Sprintf("%d device(s) available", snapshot.Len()))
	case "songs":
		for _, s := range lib.ListSongs() {
			console.Write(s.Alias + " -> " + s.URI)
		}
	case "playlists":
		for _, pl := range lib.ListPlaylists() {
			console.Write(pl.Name)
		}
	default:
		console.Write("unknown command: " + cmd.Name)
	}
}

func getDefaultConfigPath() string {
	locations := []string{
		"./noisebox.yaml",
		"./config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "noisebox", "config.yaml"),
		"/etc/noisebox/config.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return locations[0]
}
