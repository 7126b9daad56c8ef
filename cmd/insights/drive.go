package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/drive"
	"github.com/andresuchdata/food-insight/backend-go/internal/ingest"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func fetchDriveCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-drive",
		Usage: "Download ERP exports from a Google Drive folder into the data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "folder-id",
				Usage:   "Drive folder ID",
				EnvVars: []string{"DRIVE_FOLDER_ID"},
			},
			&cli.StringFlag{
				Name:    "folder-path",
				Usage:   "Drive folder path from My Drive, e.g. exports/2025 (used when --folder-id is empty)",
				EnvVars: []string{"DRIVE_FOLDER_PATH"},
			},
			newCredentialsFileFlag(),
			newCredentialsJSONFlag(),
			newDataDirFlag(),
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Load the downloaded files into postgres afterwards",
			},
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Action: runFetchDrive,
	}
}

func runFetchDrive(c *cli.Context) error {
	log := logger.Component("cli")

	creds, err := readCredentials(c)
	if err != nil {
		return err
	}
	srv, err := drive.NewService(c.Context, creds)
	if err != nil {
		return err
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		if folderID, err = srv.FindFolderByPath(c.Context, c.String("folder-path")); err != nil {
			return err
		}
	}

	dataDir := c.String("data-dir")
	paths, err := drive.NewDownloader(srv).DownloadFolder(c.Context, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: dataDir,
	})
	if err != nil {
		return err
	}
	log.Info().Str("folder", folderID).Int("files", len(paths)).Msg("drive folder downloaded")

	if !c.Bool("seed") {
		return writeJSON(os.Stdout, paths, true)
	}
	if c.String("db-url") == "" {
		return fmt.Errorf("--db-url is required with --seed")
	}
	ds, err := ingest.LoadDir(c.Context, dataDir)
	if err != nil {
		return err
	}
	return importDataset(c, "drive:"+folderID, ds)
}
