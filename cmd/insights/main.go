// Command insights computes food-manufacturing insights from files, loads ERP exports and
// Google Sheets into postgres, and archives computed bundles to object storage.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "insights",
		Usage: "Compute and manage food-manufacturing insights",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			// stdout carries command output
			logger.SetJSONOutput(os.Stderr)
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			computeCommand(),
			seedCommand(),
			syncSheetsCommand(),
			archiveCommand(),
			fetchExportsCommand(),
			fetchDriveCommand(),
		},
	}
}
