package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/ingest"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func syncSheetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync-sheets",
		Usage: "Read the operational Google spreadsheet and load it into postgres",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "spreadsheet-id",
				Usage:    "Google spreadsheet ID",
				Required: true,
				EnvVars:  []string{"SHEETS_SPREADSHEET_ID"},
			},
			newCredentialsFileFlag(),
			newCredentialsJSONFlag(),
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse the sheets and print row counts without writing",
			},
		},
		Action: runSyncSheets,
	}
}

func runSyncSheets(c *cli.Context) error {
	log := logger.Component("cli")

	creds, err := readCredentials(c)
	if err != nil {
		return err
	}

	reader, err := ingest.NewSheetsReader(c.Context, creds)
	if err != nil {
		return err
	}
	ds, err := reader.ReadDataset(c.Context, c.String("spreadsheet-id"))
	if err != nil {
		return err
	}

	if c.Bool("dry-run") {
		return writeJSON(os.Stdout, ds.RowCounts(), true)
	}
	if c.String("db-url") == "" {
		return fmt.Errorf("--db-url is required unless --dry-run is set")
	}
	log.Info().Str("spreadsheet", c.String("spreadsheet-id")).Msg("spreadsheet read")
	return importDataset(c, "sheets:"+c.String("spreadsheet-id"), ds)
}

func newCredentialsFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "credentials-file",
		Usage:   "Service account JSON key file",
		EnvVars: []string{"GOOGLE_CREDENTIALS_FILE"},
	}
}

func newCredentialsJSONFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "credentials-json",
		Usage:   "Service account JSON key contents",
		EnvVars: []string{"GOOGLE_CREDENTIALS_JSON"},
	}
}

// readCredentials returns the service account key from --credentials-json or --credentials-file.
func readCredentials(c *cli.Context) ([]byte, error) {
	if creds := c.String("credentials-json"); creds != "" {
		return []byte(creds), nil
	}
	path := c.String("credentials-file")
	if path == "" {
		return nil, fmt.Errorf("one of --credentials-json or --credentials-file is required")
	}
	creds, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return creds, nil
}
