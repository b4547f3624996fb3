package main

import (
	"context"
	"os"

	"github.com/ducttapeprodigy/boilerplate/cmd/generate"
	"github.com/ducttapeprodigy/boilerplate/cmd/server"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	log.Configure("info", "console")
	defer log.Close()

	rootCmd := &cli.Command{
		Name:        "boilerplate",
		Version:     version,
		Usage:       "Backend boilerplate with auth, items and fixture generation",
		Description: "An HTTP backend with JWT authentication, per-user items, synthetic hierarchical fixture data and an MCP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"APP_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"APP_LOG_FORMAT"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Also write debug-level JSON logs to this file",
				EnvVars: []string{"APP_LOG_FILE"},
				Global:  true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			if err := log.SetFile(cmd.GetString("log-file"), "debug"); err != nil {
				return ctx, err
			}
			log.Debug("Starting", "version", version, "commit", commit, "date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			server.Command(),
			generate.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		log.Close()
		os.Exit(1)
	}
}
