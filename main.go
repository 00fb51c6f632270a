package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pssnyder/slowmate-chess-engine-sub001/config"
	"github.com/pssnyder/slowmate-chess-engine-sub001/engine"
	"github.com/pssnyder/slowmate-chess-engine-sub001/uci"
)

const (
	engineName   = "SlowMate 1.0"
	engineAuthor = "pssnyder"
)

const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process globals. stdout carries the protocol
// only; logs go to stderr.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("slowmate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a JSON configuration file")
	logLevel := fs.String("log-level", "", "override log.level from the configuration")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err == nil && *logLevel != "" {
		cfg.Log.Level = *logLevel
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "slowmate: %v\n", err)
		return exitConfig
	}

	var logOut io.Writer = stderr
	if cfg.Log.Pretty {
		logOut = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	}
	log := zerolog.New(logOut).Level(cfg.LogLevel()).With().Timestamp().Logger()

	eng := engine.NewEngine(cfg.EngineOptions(), log)
	protocol := uci.New(engineName, engineAuthor, eng, stdout, log)
	log.Debug().Int("hash_mb", cfg.Engine.HashMB).Str("config", *configPath).Msg("engine-started")
	if err := protocol.Run(context.Background(), stdin); err != nil {
		log.Error().Err(err).Msg("protocol-failed")
		return exitConfig
	}
	return exitOK
}
