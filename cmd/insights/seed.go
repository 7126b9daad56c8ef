package main

import (
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/ingest"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/food-insight/backend-go/internal/service"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load CSV/XLSX files into postgres",
		Flags: []cli.Flag{
			newDataDirFlag(),
			newDBURLFlag(),
		},
		Action: func(c *cli.Context) error {
			ds, err := ingest.LoadDir(c.Context, c.String("data-dir"))
			if err != nil {
				return err
			}
			return importDataset(c, "files:"+c.String("data-dir"), ds)
		},
	}
}

// importDataset writes ds to the database named by --db-url.
func importDataset(c *cli.Context, source string, ds domain.Dataset) error {
	log := logger.Component("cli")

	db, err := openDB(c.Context, c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewDatasetRepository(db)
	repos := service.Repositories{Datasets: repo, Writer: repo, Runs: postgres.NewImportRunRepository(db)}
	svc := service.NewInsightService(repos, nil, domain.BusinessConfig{})
	run, err := svc.Import(c.Context, source, ds)
	if err != nil {
		return err
	}

	log.Info().Int64("run_id", run.ID).Interface("rows", ds.RowCounts()).Msg("dataset imported")
	return nil
}
