package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/jazcoin/node/app/services/node/handlers"
	"github.com/jazcoin/node/foundation/blockchain/peer"
	"github.com/jazcoin/node/foundation/blockchain/state"
	"github.com/jazcoin/node/foundation/blockchain/worker"
	"github.com/jazcoin/node/foundation/events"
	"github.com/jazcoin/node/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:5m"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7001"`
			APIHost         string        `conf:"default:0.0.0.0:5001"`
		}
		State struct {
			NodeID          string
			Payee           string        `conf:"default:miner"`
			Reward          float64       `conf:"default:1"`
			MaxTrials       uint64        `conf:"default:0"`
			PeerTimeout     time.Duration `conf:"default:5s"`
			ResolveInterval time.Duration `conf:"default:0s"`
			KnownPeers      []string
		}
		Log struct {
			File       string
			MaxSizeMB  int `conf:"default:100"`
			MaxBackups int `conf:"default:3"`
			MaxAgeDays int `conf:"default:28"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "jazcoin ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// When a log file is configured the logger is rebuilt so everything from
	// here on is also written to the rotated file.
	if cfg.Log.File != "" {
		log, err = logger.NewWithRotation("NODE", logger.Rotation{
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		if err != nil {
			return fmt.Errorf("constructing rotated logger: %w", err)
		}
		defer log.Sync()
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// The node id is the sender of every reward transaction. A fresh one is
	// generated for every run unless it is configured.
	nodeID := cfg.State.NodeID
	if nodeID == "" {
		nodeID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	log.Infow("startup", "status", "node identity", "nodeid", nodeID, "payee", cfg.State.Payee)

	// A peer set is a collection of known nodes in the network so chains
	// can be compared during consensus.
	peerSet := peer.NewPeerSet()
	for _, address := range cfg.State.KnownPeers {
		pr, err := peer.Parse(address)
		if err != nil {
			return fmt.Errorf("known peer %q: %w", address, err)
		}
		peerSet.Add(pr)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	st, err := state.New(state.Config{
		NodeID:      nodeID,
		Payee:       cfg.State.Payee,
		Reward:      cfg.State.Reward,
		MaxTrials:   cfg.State.MaxTrials,
		PeerTimeout: cfg.State.PeerTimeout,
		KnownPeers:  peerSet,
		Fetcher:     state.NewHTTPFetcher(&http.Client{Timeout: cfg.State.PeerTimeout}),
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the periodic consensus workflow. The
	// worker will register itself with the state.
	worker.Run(st, cfg.State.ResolveInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	// Construct the mux for the API calls.
	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux. Mining
	// runs inside the request, so the write timeout allows a long search.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown API started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
