// Command pmlogd is the process entry point: load configuration, acquire
// the single-instance lock, bind the syslog receiver, and run until a
// shutdown signal drains and closes everything (spec §6).
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/openwebos/pmlogdaemon/internal/config"
	"github.com/openwebos/pmlogdaemon/internal/core"
	"github.com/openwebos/pmlogdaemon/internal/diag"
	"github.com/openwebos/pmlogdaemon/internal/pidfile"
	"github.com/openwebos/pmlogdaemon/internal/receiver"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "/etc/pmlog.conf", "path to the routing configuration file")
		sockPath   = flag.String("socket", "/dev/log", "unix datagram socket to receive syslog messages on")
		pidPath    = flag.String("pidfile", pidfile.DefaultPath, "path to the single-instance pid file")
		verbose    = flag.Bool("v", false, "enable debug-level diagnostics")
	)
	flag.Parse()

	if *verbose {
		diag.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		diag.Warn("config: %s, falling back to default configuration", err)
		cfg = config.Default()
	}

	lock, err := pidfile.Acquire(*pidPath)
	if err != nil {
		diag.Error("pidfile: %s", err)
		diag.Flush()
		return 1
	}
	defer lock.Release()

	engine := core.New(cfg)

	hostname, _ := os.Hostname()
	_ = os.Remove(*sockPath)
	listener, err := receiver.Listen(*sockPath, engine, hostname)
	if err != nil {
		diag.Error("receiver: %s", err)
		diag.Flush()
		return 1
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-sig:
	case err := <-serveErr:
		if err != nil {
			diag.Error("receiver: %s", err)
		}
	}

	listener.Close()
	engine.Shutdown()
	diag.Flush()
	return 0
}
