package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"finsight/domain/dataset"
	"finsight/internal/errors"
	"finsight/ports"

	"github.com/jmoiron/sqlx"
)

const uploadColumns = `id, filename, format, storage_path, row_count, column_count, employee_count, uploaded_at`

// datasetRepository implements the DatasetRepository interface. Queries are written
// with ? placeholders and rebound for the connected driver, so the same repository
// serves postgres and sqlite.
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new upload record
func (r *datasetRepository) Create(ctx context.Context, upload *dataset.Upload) error {
	query := r.db.Rebind(`INSERT INTO datasets (` + uploadColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		upload.ID, upload.Filename, upload.Format, upload.StoragePath,
		upload.RowCount, upload.ColumnCount, upload.EmployeeCount, upload.UploadedAt.UTC(),
	)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to create upload %s: %w", upload.ID, err))
	}

	return nil
}

// GetByID retrieves an upload by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id string) (*dataset.Upload, error) {
	query := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM datasets WHERE id = ?`)

	var upload dataset.Upload
	if err := r.db.GetContext(ctx, &upload, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("upload %s", id))
		}
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to get upload: %w", err))
	}

	return &upload, nil
}

// List retrieves the most recent uploads first
func (r *datasetRepository) List(ctx context.Context, limit int) ([]*dataset.Upload, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`SELECT ` + uploadColumns + ` FROM datasets ORDER BY uploaded_at DESC, id LIMIT ?`)

	var uploads []*dataset.Upload
	if err := r.db.SelectContext(ctx, &uploads, query, limit); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to list uploads: %w", err))
	}

	return uploads, nil
}

// Latest retrieves the most recent upload
func (r *datasetRepository) Latest(ctx context.Context) (*dataset.Upload, error) {
	uploads, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, errors.NotFound("upload")
	}
	return uploads[0], nil
}
