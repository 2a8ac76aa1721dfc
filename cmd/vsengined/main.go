// Command vsengined is the engine's process bootstrap. It forks a
// child that runs the server loop while the parent exits immediately.
// Go has no fork() that preserves a running goroutine runtime, so
// self-exec via os/exec is the idiomatic substitute: the parent
// re-execs itself with an internal flag that skips straight to
// serving.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"vsengine"
	"vsengine/internal/config"
	"vsengine/internal/server"
)

const childFlag = "--child"

func main() {
	var configPath string
	var asChild bool
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.BoolVar(&asChild, childFlag[2:], false, "internal: run as the server child process")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vsengined: config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if asChild {
		runServer(cfg)
		return
	}

	spawnChild(configPath)
}

// spawnChild re-execs the current binary with --child set and returns
// without waiting for it. The child stays in the parent's session and
// shares its stdout and stderr.
func spawnChild(configPath string) {
	args := []string{childFlag}
	if configPath != "" {
		args = append(args, "-config", configPath)
	}

	cmd := exec.Command(os.Args[0], args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "vsengined: failed to start child: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cfg config.Config) {
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.LogLevel))

	logger := vsengine.NewLogger(level)
	catalog := vsengine.NewCatalog[string](vsengine.NewDistance())
	catalog.SetLogger(logger)
	srv := server.New(catalog, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}
