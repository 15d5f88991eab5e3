package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		slog.Error("anonrelay failed", slog.String("error", err.Error()), slog.String("module", "main"))
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    "anonrelay",
		Usage:   "Anonymous message relay core",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{"ANONRELAY_CONFIG"},
				Value:   "config.yaml",
			},
		},
		Commands: []*cli.Command{
			runCommand,
			migrateCommand,
			tokenCommand,
			statsCommand,
			banCommand,
			unbanCommand,
		},
	}
}

func setupLogger(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l})))
}
