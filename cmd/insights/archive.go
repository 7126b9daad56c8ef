package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/config"
	"github.com/andresuchdata/food-insight/backend-go/internal/ingest"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
	"github.com/andresuchdata/food-insight/backend-go/internal/storage"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Store and retrieve insight snapshots in object storage",
		Subcommands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a bundle from --file, or compute one from --data-dir and upload it",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "JSON bundle written by 'insights compute'"},
					&cli.StringFlag{Name: "data-dir", Usage: "Compute from these CSV/XLSX files instead"},
					newProfileFlag(),
				}, computeFlags()...),
				Action: runArchiveUpload,
			},
			{
				Name:  "list",
				Usage: "List archived snapshot keys",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "day", Usage: "Only snapshots generated on this day (YYYY-MM-DD)"},
				},
				Action: func(c *cli.Context) error {
					archiver, err := newArchiver(c)
					if err != nil {
						return err
					}
					day, err := dateFlag(c, "day")
					if err != nil {
						return err
					}
					keys, err := archiver.List(c.Context, day)
					if err != nil {
						return err
					}
					return writeJSON(os.Stdout, keys, true)
				},
			},
			{
				Name:  "get",
				Usage: "Print an archived snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Usage: "Snapshot object key", Required: true},
					&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
				},
				Action: func(c *cli.Context) error {
					archiver, err := newArchiver(c)
					if err != nil {
						return err
					}
					all, err := archiver.Load(c.Context, c.String("key"))
					if err != nil {
						return err
					}
					return writeJSON(os.Stdout, all, c.Bool("pretty"))
				},
			},
		},
	}
}

func fetchExportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-exports",
		Usage: "Download ERP export files (CSV/XLSX) from object storage into a data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Usage: "Object key prefix", Value: "exports/"},
			newDataDirFlag(),
		},
		Action: func(c *cli.Context) error {
			store, err := newObjectStorage(c)
			if err != nil {
				return err
			}
			paths, err := storage.FetchExports(c.Context, store, c.String("prefix"), c.String("data-dir"))
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, paths, true)
		},
	}
}

func runArchiveUpload(c *cli.Context) error {
	log := logger.Component("cli")

	var all *insight.AllInsights
	switch {
	case c.String("file") != "":
		data, err := os.ReadFile(c.String("file"))
		if err != nil {
			return fmt.Errorf("read bundle: %w", err)
		}
		all = &insight.AllInsights{}
		if err := json.Unmarshal(data, all); err != nil {
			return fmt.Errorf("decode bundle: %w", err)
		}
	case c.String("data-dir") != "":
		business, err := loadBusiness(c)
		if err != nil {
			return err
		}
		req, err := computeRequest(c)
		if err != nil {
			return err
		}
		ds, err := ingest.LoadDir(c.Context, c.String("data-dir"))
		if err != nil {
			return err
		}
		if all, err = newFileService(ds, business).Compute(c.Context, req); err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of --file or --data-dir is required")
	}

	archiver, err := newArchiver(c)
	if err != nil {
		return err
	}
	key, err := archiver.Archive(c.Context, all)
	if err != nil {
		return err
	}
	log.Info().Str("key", key).Msg("snapshot uploaded")
	fmt.Println(key)
	return nil
}

func newObjectStorage(c *cli.Context) (storage.ObjectStorage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()
	return storage.NewMinioClient(ctx, cfg.Storage)
}

func newArchiver(c *cli.Context) (*storage.Archiver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := newObjectStorage(c)
	if err != nil {
		return nil, err
	}
	return storage.NewArchiver(store, cfg.Storage.ArchivePrefix), nil
}
