package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository"
)

// importRunRepository handles database operations for import run tracking
type importRunRepository struct {
	db *DB
}

var _ repository.ImportRunRepository = (*importRunRepository)(nil)

func NewImportRunRepository(db *DB) *importRunRepository {
	return &importRunRepository{db: db}
}

const importRunColumns = "id, source, status, total_rows, started_at, completed_at, COALESCE(error_message, '') AS error_message"

// CreateImportRun inserts run and fills in its ID.
func (r *importRunRepository) CreateImportRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		INSERT INTO import_runs (source, status, total_rows, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query, run.Source, run.Status, run.TotalRows, run.StartedAt).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (r *importRunRepository) UpdateImportRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		UPDATE import_runs
		SET status = $1, total_rows = $2, completed_at = $3, error_message = $4
		WHERE id = $5
	`

	res, err := r.db.ExecContext(ctx, query, run.Status, run.TotalRows, run.CompletedAt, run.ErrorMessage, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update import run %d: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *importRunRepository) GetImportRun(ctx context.Context, id int64) (*domain.ImportRun, error) {
	var run domain.ImportRun
	err := r.db.GetContext(ctx, &run, "SELECT "+importRunColumns+" FROM import_runs WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import run %d: %w", id, err)
	}
	return &run, nil
}

func (r *importRunRepository) ListImportRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	var runs []domain.ImportRun
	query := "SELECT " + importRunColumns + " FROM import_runs ORDER BY started_at DESC, id DESC LIMIT $1"
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}
