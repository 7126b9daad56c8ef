package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/config"
	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/food-insight/backend-go/internal/service"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing purchases/production/sales/... CSV or XLSX files",
		Value:   "./data",
		EnvVars: []string{"APP_DATA_DIR"},
	}
}

func newProfileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "profile",
		Usage:   "Business profile file (YAML/JSON) overriding the default business configuration",
		EnvVars: []string{"BIZ_PROFILE_FILE"},
	}
}

func computeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "First day to include (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Usage: "Last day to include (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "as-of", Usage: "Reference date for recency (YYYY-MM-DD); defaults to the latest record"},
		&cli.Float64Flag{Name: "service-level", Usage: "Service level percent overriding the business profile"},
		&cli.StringFlag{Name: "strategy", Usage: "BOM variance baseline", Value: "self_baseline"},
	}
}

// computeRequest reads the flags of computeFlags.
func computeRequest(c *cli.Context) (service.ComputeRequest, error) {
	var req service.ComputeRequest
	var err error
	if req.Range.From, err = dateFlag(c, "from"); err != nil {
		return req, err
	}
	if req.Range.To, err = dateFlag(c, "to"); err != nil {
		return req, err
	}
	if req.AsOf, err = dateFlag(c, "as-of"); err != nil {
		return req, err
	}
	req.ServiceLevel = c.Float64("service-level")
	req.Strategy = c.String("strategy")
	return req, nil
}

func dateFlag(c *cli.Context, name string) (time.Time, error) {
	value := strings.TrimSpace(c.String(name))
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

func loadBusiness(c *cli.Context) (domain.BusinessConfig, error) {
	business, err := config.LoadBusinessConfig(c.String("profile"))
	if err != nil {
		return domain.BusinessConfig{}, fmt.Errorf("business configuration: %w", err)
	}
	return business, nil
}

// openDB opens postgres through pgx's database/sql driver.
func openDB(ctx context.Context, url string) (*postgres.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return postgres.NewDBFromSQL(db, "pgx"), nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// outputWriter returns stdout, or the file named by --out.
func outputWriter(c *cli.Context) (io.WriteCloser, error) {
	path := c.String("out")
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
