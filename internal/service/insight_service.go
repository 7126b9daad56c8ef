package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/food-insight/backend-go/internal/cache"
	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository"
	"github.com/andresuchdata/food-insight/backend-go/internal/storage"
)

var (
	// ErrUnknownInsight is returned for a section name ComputeAllInsights does not produce.
	ErrUnknownInsight = errors.New("unknown insight")
	// ErrInsightUnavailable is returned when a section was skipped for lack of input data.
	ErrInsightUnavailable = errors.New("insight unavailable for the loaded data")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrReadOnly is returned by Import when no dataset writer is configured.
	ErrReadOnly = errors.New("dataset writer not configured")
)

const (
	defaultLoadConcurrency = 4
	defaultImportRunLimit  = 20
	maxImportRunLimit      = 200
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Repositories groups the stores the service reads from. Writer and Runs may be nil.
type Repositories struct {
	Datasets     repository.DatasetRepository
	Writer       repository.DatasetWriter
	ChannelCosts repository.ChannelCostRepository
	Labor        repository.LaborRecordRepository
	Runs         repository.ImportRunRepository
}

// ComputeRequest selects the data window and per-call tuning of one computation.
type ComputeRequest struct {
	Range domain.DateRange
	// ServiceLevel overrides the configured service level when positive.
	ServiceLevel float64
	// Strategy names the BOM baseline; empty means self_baseline.
	Strategy string
	// AsOf pins the recency reference date. Requests with AsOf bypass the cache.
	AsOf time.Time
	// Archive uploads the computed bundle to object storage when an archiver is configured.
	Archive bool
}

type InsightService struct {
	repos           Repositories
	cache           cache.InsightCache
	archiver        *storage.Archiver
	business        domain.BusinessConfig
	loadConcurrency int
	fingerprint     string
	now             func() time.Time
}

func NewInsightService(repos Repositories, cacheImpl cache.InsightCache, business domain.BusinessConfig) *InsightService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInsightCache()
	}
	return &InsightService{
		repos:           repos,
		cache:           cacheImpl,
		business:        business,
		loadConcurrency: defaultLoadConcurrency,
		fingerprint:     cache.ConfigFingerprint(business),
		now:             time.Now,
	}
}

// WithArchiver enables archiving of computed bundles.
func (s *InsightService) WithArchiver(a *storage.Archiver) *InsightService {
	s.archiver = a
	return s
}

// WithLoadConcurrency bounds how many tables LoadDataset fetches at once.
func (s *InsightService) WithLoadConcurrency(n int) *InsightService {
	if n > 0 {
		s.loadConcurrency = n
	}
	return s
}

// Business returns the configuration insights are computed with.
func (s *InsightService) Business() domain.BusinessConfig {
	return s.business
}

// Compute loads the dataset for req.Range and runs every analysis on it.
func (s *InsightService) Compute(ctx context.Context, req ComputeRequest) (*insight.AllInsights, error) {
	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}

	key := cache.InsightKey{
		Range:        req.Range,
		ServiceLevel: req.ServiceLevel,
		Strategy:     opts.VarianceStrategy.Name(),
		Config:       s.fingerprint,
	}
	useCache := req.AsOf.IsZero()
	if useCache {
		if all, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			log.Debug().Msg("insights: cache hit")
			if req.Archive {
				s.archive(ctx, all)
			}
			return all, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("insights: cache get failed")
		}
	}

	ds, err := s.LoadDataset(ctx, req.Range)
	if err != nil {
		return nil, err
	}
	ds.AsOf = req.AsOf

	all := insight.ComputeAllInsightsWith(ds, s.business, opts)

	if useCache {
		if err := s.cache.Set(ctx, key, all); err != nil {
			log.Warn().Err(err).Msg("insights: cache set failed")
		}
	}
	if req.Archive {
		s.archive(ctx, all)
	}
	return all, nil
}

// ComputeDataset runs every analysis on an already-loaded dataset, bypassing repositories and cache.
func (s *InsightService) ComputeDataset(ds domain.Dataset, req ComputeRequest) (*insight.AllInsights, error) {
	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}
	if !req.AsOf.IsZero() {
		ds.AsOf = req.AsOf
	}
	return insight.ComputeAllInsightsWith(ds, s.business, opts), nil
}

// Section computes the bundle and returns one named section of it.
func (s *InsightService) Section(ctx context.Context, name string, req ComputeRequest) (any, error) {
	if !isKnownSection(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInsight, name)
	}

	all, err := s.Compute(ctx, req)
	if err != nil {
		return nil, err
	}

	v, _ := all.Section(name)
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrInsightUnavailable, name)
	}
	return v, nil
}

// LoadDataset fetches every table for r concurrently.
func (s *InsightService) LoadDataset(ctx context.Context, r domain.DateRange) (domain.Dataset, error) {
	var ds domain.Dataset
	fromMonth, toMonth := monthBounds(r)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.loadConcurrency)

	load := func(table string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				return fmt.Errorf("load %s: %w", table, err)
			}
			return nil
		})
	}

	// Each closure writes a distinct field of ds.
	load("purchases", func() (err error) { ds.Purchases, err = s.repos.Datasets.ListPurchases(ctx, r); return })
	load("production", func() (err error) { ds.Production, err = s.repos.Datasets.ListProduction(ctx, r); return })
	load("sales", func() (err error) { ds.Sales, err = s.repos.Datasets.ListSales(ctx, r); return })
	load("utilities", func() (err error) { ds.Utilities, err = s.repos.Datasets.ListUtilities(ctx, r); return })
	load("inventory_snapshots", func() (err error) {
		ds.InventorySnapshots, err = s.repos.Datasets.ListInventorySnapshots(ctx, r)
		return
	})
	load("inventory", func() (err error) { ds.Inventory, err = s.repos.Datasets.ListInventory(ctx); return })
	load("bom_items", func() (err error) { ds.BomItems, err = s.repos.Datasets.ListBomItems(ctx); return })
	load("material_master", func() (err error) { ds.MaterialMaster, err = s.repos.Datasets.ListMaterialMaster(ctx); return })
	if s.repos.ChannelCosts != nil {
		load("channel_costs", func() (err error) { ds.ChannelCosts, err = s.repos.ChannelCosts.ListChannelCosts(ctx); return })
	}
	if s.repos.Labor != nil {
		load("labor_records", func() (err error) {
			ds.LaborRecords, err = s.repos.Labor.ListLaborRecords(ctx, fromMonth, toMonth)
			return
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Dataset{}, err
	}

	log.Info().
		Int("purchases", len(ds.Purchases)).
		Int("production", len(ds.Production)).
		Int("sales", len(ds.Sales)).
		Int("inventory", len(ds.Inventory)).
		Msg("insights: dataset loaded")
	return ds, nil
}

// Import writes an ingested dataset and drops cached bundles. source names where the
// rows came from ("files:./data", "sheets:<id>") and is recorded on the import run.
func (s *InsightService) Import(ctx context.Context, source string, ds domain.Dataset) (*domain.ImportRun, error) {
	if s.repos.Writer == nil {
		return nil, ErrReadOnly
	}

	run := &domain.ImportRun{
		Source:    source,
		Status:    domain.ImportProcessing,
		TotalRows: ds.TotalRows(),
		StartedAt: s.now().UTC(),
	}
	if s.repos.Runs != nil {
		if err := s.repos.Runs.CreateImportRun(ctx, run); err != nil {
			return nil, fmt.Errorf("create import run: %w", err)
		}
	}

	saveErr := s.repos.Writer.SaveDataset(ctx, ds)
	if saveErr != nil {
		saveErr = fmt.Errorf("save dataset: %w", saveErr)
	}
	run.Finish(s.now().UTC(), saveErr)

	if s.repos.Runs != nil {
		if err := s.repos.Runs.UpdateImportRun(ctx, run); err != nil {
			log.Warn().Err(err).Int64("run_id", run.ID).Msg("insights: import run update failed")
		}
	}
	if saveErr != nil {
		return run, saveErr
	}

	log.Info().Int64("run_id", run.ID).Str("source", source).Int("rows", run.TotalRows).Msg("insights: dataset imported")
	s.invalidate(ctx)
	return run, nil
}

// ListImportRuns returns the latest import runs, newest first. limit defaults to 20 and is capped at 200.
func (s *InsightService) ListImportRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if s.repos.Runs == nil {
		return []domain.ImportRun{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultImportRunLimit
	case limit > maxImportRunLimit:
		limit = maxImportRunLimit
	}
	return s.repos.Runs.ListImportRuns(ctx, limit)
}

func (s *InsightService) GetImportRun(ctx context.Context, id int64) (*domain.ImportRun, error) {
	if s.repos.Runs == nil {
		return nil, repository.ErrNotFound
	}
	return s.repos.Runs.GetImportRun(ctx, id)
}

func (s *InsightService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *InsightService) ListChannelCosts(ctx context.Context) ([]domain.ChannelCostSummary, error) {
	return s.repos.ChannelCosts.ListChannelCosts(ctx)
}

func (s *InsightService) GetChannelCost(ctx context.Context, channel string) (*domain.ChannelCostSummary, error) {
	return s.repos.ChannelCosts.GetChannelCost(ctx, channel)
}

// UpsertChannelCosts validates and stores channel cost structures. Rates are percents.
func (s *InsightService) UpsertChannelCosts(ctx context.Context, costs []domain.ChannelCostSummary) error {
	var errs []error
	for i, c := range costs {
		if strings.TrimSpace(c.ChannelName) == "" {
			errs = append(errs, fmt.Errorf("costs[%d]: channel_name is required", i))
		}
		for field, pct := range map[string]float64{
			"total_variable_rate_pct": c.TotalVariableRatePct,
			"discount_rate":           c.DiscountRate,
			"commission_rate":         c.CommissionRate,
		} {
			if pct < 0 || pct > 100 {
				errs = append(errs, fmt.Errorf("costs[%d]: %s must be within [0, 100], got %v", i, field, pct))
			}
		}
		if c.TotalVariablePerOrder < 0 || c.TotalFixedMonthly < 0 {
			errs = append(errs, fmt.Errorf("costs[%d]: costs must not be negative", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if err := s.repos.ChannelCosts.UpsertChannelCosts(ctx, costs); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *InsightService) ListLaborRecords(ctx context.Context, fromMonth, toMonth string) ([]domain.LaborRecord, error) {
	for _, m := range []string{fromMonth, toMonth} {
		if m != "" && !monthPattern.MatchString(m) {
			return nil, fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidRequest, m)
		}
	}
	return s.repos.Labor.ListLaborRecords(ctx, fromMonth, toMonth)
}

// UpsertLaborRecords validates and stores monthly payroll rows.
func (s *InsightService) UpsertLaborRecords(ctx context.Context, records []domain.LaborRecord) error {
	var errs []error
	for i, r := range records {
		if !monthPattern.MatchString(r.Month) {
			errs = append(errs, fmt.Errorf("records[%d]: month %q must be YYYY-MM", i, r.Month))
		}
		if r.Headcount < 0 || r.TotalCost < 0 {
			errs = append(errs, fmt.Errorf("records[%d]: headcount and total_cost must not be negative", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if err := s.repos.Labor.UpsertLaborRecords(ctx, records); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *InsightService) options(req ComputeRequest) (insight.Options, error) {
	if req.ServiceLevel < 0 || req.ServiceLevel >= 100 {
		return insight.Options{}, fmt.Errorf("%w: service_level must be in (0, 100), got %v", ErrInvalidRequest, req.ServiceLevel)
	}
	if !req.Range.From.IsZero() && !req.Range.To.IsZero() && req.Range.To.Before(req.Range.From) {
		return insight.Options{}, fmt.Errorf("%w: to must not be before from", ErrInvalidRequest)
	}
	strategy, err := varianceStrategy(req.Strategy)
	if err != nil {
		return insight.Options{}, err
	}
	return insight.Options{ServiceLevel: req.ServiceLevel, VarianceStrategy: strategy}, nil
}

func varianceStrategy(name string) (insight.VarianceStrategy, error) {
	self := insight.SelfBaselineVarianceStrategy{}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", self.Name():
		return self, nil
	default:
		return nil, fmt.Errorf("%w: unknown variance strategy %q", ErrInvalidRequest, name)
	}
}

func (s *InsightService) archive(ctx context.Context, all *insight.AllInsights) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.Archive(ctx, all); err != nil {
		log.Warn().Err(err).Msg("insights: archive failed")
	}
}

func (s *InsightService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("insights: cache invalidate failed")
	}
}

func isKnownSection(name string) bool {
	for _, s := range insight.Sections {
		if s == name {
			return true
		}
	}
	return false
}

func monthBounds(r domain.DateRange) (string, string) {
	var from, to string
	if !r.From.IsZero() {
		from = r.From.Format("2006-01")
	}
	if !r.To.IsZero() {
		to = r.To.Format("2006-01")
	}
	return from, to
}
