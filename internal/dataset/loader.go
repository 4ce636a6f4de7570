package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"finsight/adapters/excel"
	domainDataset "finsight/domain/dataset"
	"finsight/domain/finance"
	"finsight/internal/errors"
	"finsight/internal/session"
	"finsight/ports"

	"github.com/google/uuid"
)

// Parse reads a CSV or XLSX file into a FinanceTable. Every failure is a PARSE_FAILURE.
func Parse(r io.Reader, filename string) (*finance.Table, error) {
	data, err := excel.NewDataReader(filename).Read(r)
	if err != nil {
		return nil, errors.ParseFailure(fmt.Sprintf("could not read %s", filename), err)
	}
	table, err := finance.NewTable(data.Headers, data.Records)
	if err != nil {
		return nil, errors.ParseFailure(fmt.Sprintf("could not read %s", filename), err)
	}
	return table, nil
}

// Loader is the only writer of the session store. It parses an upload, optionally
// keeps the file and records it in the upload history, then publishes the table.
type Loader struct {
	store    *session.Store
	files    *LocalFileStorage
	history  ports.DatasetRepository
	maxBytes int64
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithFileStorage keeps a copy of every successful upload
func WithFileStorage(files *LocalFileStorage) LoaderOption {
	return func(l *Loader) { l.files = files }
}

// WithHistory records successful uploads in repo
func WithHistory(repo ports.DatasetRepository) LoaderOption {
	return func(l *Loader) { l.history = repo }
}

// WithMaxBytes limits the accepted upload size
func WithMaxBytes(n int64) LoaderOption {
	return func(l *Loader) { l.maxBytes = n }
}

// NewLoader creates a loader publishing into store
func NewLoader(store *session.Store, opts ...LoaderOption) *Loader {
	l := &Loader{store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HistoryEnabled reports whether uploads are recorded
func (l *Loader) HistoryEnabled() bool {
	return l.history != nil && l.files != nil
}

// Load parses r and publishes the table under session.DefaultKey, replacing any
// previous upload. On parse failure the previous table is cleared so that no page
// renders against stale data.
func (l *Loader) Load(ctx context.Context, r io.Reader, filename string) (*session.Snapshot, error) {
	start := time.Now()

	content, err := l.readAll(r)
	if err != nil {
		l.store.Clear(session.DefaultKey)
		return nil, err
	}

	table, err := Parse(bytes.NewReader(content), filename)
	if err != nil {
		log.Printf("[Loader] Parse of %s failed: %v", filename, err)
		l.store.Clear(session.DefaultKey)
		return nil, err
	}

	upload := &domainDataset.Upload{
		ID:            uuid.New().String(),
		Filename:      filename,
		Format:        formatOf(filename),
		RowCount:      table.Len(),
		ColumnCount:   len(table.Headers()),
		EmployeeCount: len(table.Employees()),
		UploadedAt:    time.Now().UTC(),
	}

	recorded := false
	if l.HistoryEnabled() {
		// history is supplementary: the upload is published even when recording fails
		if err := l.record(ctx, upload, content); err != nil {
			log.Printf("[Loader] Upload %s not recorded: %v", upload.ID, err)
		} else {
			recorded = true
		}
	}

	snap := &session.Snapshot{
		ID:       upload.ID,
		Filename: filename,
		Table:    table,
		LoadedAt: upload.UploadedAt,
		Recorded: recorded,
	}
	l.store.Replace(session.DefaultKey, snap)

	log.Printf("[Loader] Published %s (%d rows, %d columns, %d employees) in %v",
		filename, upload.RowCount, upload.ColumnCount, upload.EmployeeCount, time.Since(start))
	return snap, nil
}

// record stores the file and its history row. A stored file without a history row
// is removed again.
func (l *Loader) record(ctx context.Context, upload *domainDataset.Upload, content []byte) error {
	path, err := l.files.Store(ctx, bytes.NewReader(content), upload.Filename)
	if err != nil {
		return errors.Wrapf(err, "could not keep a copy of %s", upload.Filename)
	}
	upload.StoragePath = path
	if err := l.history.Create(ctx, upload); err != nil {
		if delErr := l.files.Delete(ctx, path); delErr != nil {
			log.Printf("[Loader] Could not remove orphaned file %s: %v", path, delErr)
		}
		upload.StoragePath = ""
		return errors.Wrapf(err, "could not record upload %s", upload.ID)
	}
	return nil
}

// Activate re-publishes a previously recorded upload
func (l *Loader) Activate(ctx context.Context, id string) (*session.Snapshot, error) {
	if !l.HistoryEnabled() {
		return nil, errors.InvalidInput("upload history is not configured")
	}
	upload, err := l.history.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := l.files.Exists(ctx, upload.StoragePath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not check stored file of upload %s", upload.ID)
	}
	if !exists {
		return nil, errors.NotFound("stored upload file")
	}
	rc, err := l.files.GetReader(ctx, upload.StoragePath)
	if err != nil {
		return nil, &errors.AppError{Code: errors.CodeNotFound, Message: "stored upload file not found", Cause: err}
	}
	defer rc.Close()

	table, err := Parse(rc, upload.Filename)
	if err != nil {
		return nil, err
	}

	snap := &session.Snapshot{
		ID:       upload.ID,
		Filename: upload.Filename,
		Table:    table,
		LoadedAt: time.Now().UTC(),
		Recorded: true,
	}
	l.store.Replace(session.DefaultKey, snap)
	log.Printf("[Loader] Re-activated upload %s (%s)", upload.ID, upload.Filename)
	return snap, nil
}

// History lists recorded uploads, most recent first
func (l *Loader) History(ctx context.Context, limit int) ([]*domainDataset.Upload, error) {
	if l.history == nil {
		return nil, nil
	}
	return l.history.List(ctx, limit)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	if l.maxBytes <= 0 {
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.ParseFailure("could not read upload", err)
		}
		return content, nil
	}
	content, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, errors.ParseFailure("could not read upload", err)
	}
	if int64(len(content)) > l.maxBytes {
		return nil, errors.InvalidInput(fmt.Sprintf("upload exceeds %d bytes", l.maxBytes))
	}
	return content, nil
}

func formatOf(filename string) domainDataset.Format {
	if excel.NewDataReader(filename).FileType() == excel.FileTypeXLSX {
		return domainDataset.FormatXLSX
	}
	return domainDataset.FormatCSV
}
