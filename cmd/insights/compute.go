package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/ingest"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository/memory"
	"github.com/andresuchdata/food-insight/backend-go/internal/service"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func computeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compute",
		Usage: "Compute insights from CSV/XLSX files and print them as JSON",
		Flags: append([]cli.Flag{
			newDataDirFlag(),
			newProfileFlag(),
			&cli.StringFlag{Name: "section", Usage: "Print only this insight section"},
			&cli.StringFlag{Name: "out", Usage: "Write JSON to this file instead of stdout"},
			&cli.BoolFlag{Name: "pretty", Usage: "Indent JSON output"},
		}, computeFlags()...),
		Action: runCompute,
	}
}

func runCompute(c *cli.Context) error {
	log := logger.Component("cli")

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
	log.Info().Interface("rows", ds.RowCounts()).Msg("data files loaded")

	svc := newFileService(ds, business)

	var result any
	if section := c.String("section"); section != "" {
		result, err = svc.Section(c.Context, section, req)
	} else {
		result, err = svc.Compute(c.Context, req)
	}
	if err != nil {
		return err
	}

	w, err := outputWriter(c)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer w.Close()
	return writeJSON(w, result, c.Bool("pretty"))
}

// newFileService serves a dataset read from files through the in-memory store so that
// range filtering behaves exactly as it does against postgres.
func newFileService(ds domain.Dataset, business domain.BusinessConfig) *service.InsightService {
	store := memory.NewStoreFromDataset(ds)
	return service.NewInsightService(service.Repositories{
		Datasets:     store,
		Writer:       store,
		ChannelCosts: store,
		Labor:        store,
	}, nil, business)
}
