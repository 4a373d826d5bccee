package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nstehr/vimy/drone-core/agent"
	"github.com/nstehr/vimy/drone-core/config"
	"github.com/nstehr/vimy/drone-core/ipc"
	"github.com/nstehr/vimy/drone-core/model"
	"github.com/nstehr/vimy/drone-core/rules"
	"github.com/nstehr/vimy/drone-core/trace"
)

const banner = `
 ____                               ____
|  _ \ _ __ ___  _ __   ___        / ___|___  _ __ ___
| | | | '__/ _ \| '_ \ / _ \_____ | |   / _ \| '__/ _ \
| |_| | | | (_) | | | |  __/_____|| |__| (_) | | |  __/
|____/|_|  \___/|_| |_|\___|       \____\___/|_|  \___|

Harvest. Retreat. Combat.`

func main() {
	configPath := flag.String("config", "drone-core.toml", "TOML configuration file")
	dryRun := flag.String("dry-run", "", "YAML snapshot: print the spawn decision of every allied unit and exit")
	flag.Parse()

	missingConfig := false
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = config.Default()
		missingConfig = true
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}
	if cfg.Logging.JSON() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	if missingConfig {
		slog.Warn("config file not found, using defaults", "path", *configPath)
	}

	engine, err := rules.NewEngine(rules.CompileTactics(cfg.Tactics))
	if err != nil {
		slog.Error("failed to compile tactics", "error", err)
		os.Exit(1)
	}

	if *dryRun != "" {
		if err := runDryRun(*dryRun, engine, cfg); err != nil {
			slog.Error("dry run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(banner)
	slog.Info("starting drone-core", "rules", engine.Names())

	var recorder agent.Recorder
	if cfg.Trace.Enabled {
		w := trace.NewWriter(cfg.Trace.Dir, cfg.Trace.Prefix)
		defer w.Close()
		recorder = w
		slog.Info("decision trace enabled", "path", w.Path())
	}

	serve := func(c *ipc.Connection) {
		s := agent.NewSession(engine, cfg.Tactics, cfg.Server.Team)
		if recorder != nil {
			s.SetRecorder(recorder)
		}
		v, err := ipc.NewValidator()
		if err != nil {
			slog.Error("schema compile failed", "error", err)
			return
		}
		c.SetValidator(v)
		s.Register(c)
		slog.Info("session started", "session", s.ID)
		c.ReadLoop()
		slog.Info("session ended", "session", s.ID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveUnix(ctx, cfg.Server.SocketPath, serve) })
	if cfg.Server.WSAddr != "" {
		g.Go(func() error { return serveWS(ctx, cfg.Server.WSAddr, serve) })
	}

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}

func serveUnix(ctx context.Context, socketPath string, serve func(*ipc.Connection)) error {
	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer os.Remove(socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	slog.Info("listening on domain socket", "path", socketPath)
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				slog.Error("failed to accept connection", "error", err)
				continue
			}
		}
		slog.Info("new connection accepted")
		go serve(ipc.NewSocketConnection(conn, nil))
	}
}

func serveWS(ctx context.Context, addr string, serve func(*ipc.Connection)) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", ipc.WSHandler(serve))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening for websocket hosts", "addr", addr, "path", "/ws")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket listener: %w", err)
	}
	return nil
}

// runDryRun plays one spawn event per living ally against a saved snapshot
// and prints the resulting command batches as JSON lines.
func runDryRun(path string, engine *rules.Engine, cfg *config.Config) error {
	snap, err := model.LoadSnapshot(path)
	if err != nil {
		return err
	}
	team := agent.NewTeam(cfg.Server.Team, engine, cfg.Tactics)
	enc := json.NewEncoder(os.Stdout)
	for _, u := range snap.Units {
		if !u.Alive {
			continue
		}
		batch := ipc.NewBatch(u.ID)
		team.OnSpawn(u.ID, &snap, batch)
		st, _ := team.State(u.ID)
		if err := enc.Encode(struct {
			ipc.CommandsMessage
			Mode model.Mode `json:"mode"`
			Rule string     `json:"rule"`
		}{batch.Message(snap.Tick), st.Mode, st.Rule}); err != nil {
			return err
		}
	}
	return nil
}
