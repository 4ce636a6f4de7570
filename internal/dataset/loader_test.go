package dataset

import (
	"context"
	"os"
	"strings"
	"testing"

	domainDataset "finsight/domain/dataset"
	"finsight/domain/finance"
	"finsight/internal/errors"
	"finsight/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDatasetRepository records uploads in memory
type MockDatasetRepository struct {
	mock.Mock
	uploads map[string]*domainDataset.Upload
}

func (m *MockDatasetRepository) Create(ctx context.Context, upload *domainDataset.Upload) error {
	args := m.Called(ctx, upload)
	if m.uploads == nil {
		m.uploads = make(map[string]*domainDataset.Upload)
	}
	m.uploads[upload.ID] = upload
	return args.Error(0)
}

func (m *MockDatasetRepository) GetByID(ctx context.Context, id string) (*domainDataset.Upload, error) {
	args := m.Called(ctx, id)
	if upload, ok := m.uploads[id]; ok {
		return upload, args.Error(1)
	}
	return nil, errors.NotFound("upload")
}

func (m *MockDatasetRepository) List(ctx context.Context, limit int) ([]*domainDataset.Upload, error) {
	args := m.Called(ctx, limit)
	var out []*domainDataset.Upload
	for _, u := range m.uploads {
		out = append(out, u)
	}
	return out, args.Error(1)
}

func (m *MockDatasetRepository) Latest(ctx context.Context) (*domainDataset.Upload, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func TestLoader_LoadPublishes(t *testing.T) {
	store := session.NewStore()
	loader := NewLoader(store)

	snap, err := loader.Load(context.Background(), strings.NewReader(financeCSV), "finance.csv")
	require.NoError(t, err)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, snap, current)
	assert.Equal(t, 3, current.Table.Len())
	assert.Equal(t, []string{"Alice", "Bob"}, current.Table.Employees())
	assert.True(t, current.Table.IsNumeric(finance.ColWater))
	assert.False(t, loader.HistoryEnabled())
}

func TestLoader_ParseFailureClearsState(t *testing.T) {
	store := session.NewStore()
	loader := NewLoader(store)

	_, err := loader.Load(context.Background(), strings.NewReader(financeCSV), "finance.csv")
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), strings.NewReader("Employee,Income\nAlice,1,2\n"), "broken.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseFailure, errors.GetCode(err))

	_, err = store.Current()
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))
}

func TestLoader_MaxBytes(t *testing.T) {
	loader := NewLoader(session.NewStore(), WithMaxBytes(10))
	_, err := loader.Load(context.Background(), strings.NewReader(financeCSV), "finance.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoader_HistoryAndActivate(t *testing.T) {
	ctx := context.Background()
	repo := &MockDatasetRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*dataset.Upload")).Return(nil)
	repo.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)

	store := session.NewStore()
	loader := NewLoader(store,
		WithFileStorage(NewLocalFileStorageWithPath(t.TempDir())),
		WithHistory(repo),
	)
	require.True(t, loader.HistoryEnabled())

	first, err := loader.Load(ctx, strings.NewReader(financeCSV), "finance.csv")
	require.NoError(t, err)
	assert.True(t, first.Recorded)
	upload := repo.uploads[first.ID]
	require.NotNil(t, upload)
	assert.Equal(t, domainDataset.FormatCSV, upload.Format)
	assert.Equal(t, 3, upload.RowCount)
	assert.Equal(t, 2, upload.EmployeeCount)
	assert.NotEmpty(t, upload.StoragePath)

	_, err = loader.Load(ctx, strings.NewReader("Employee,Monthly Income (£)\nCarol,1000\n"), "other.csv")
	require.NoError(t, err)

	snap, err := loader.Activate(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "finance.csv", snap.Filename)
	assert.True(t, snap.Recorded)
	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, 3, current.Table.Len())

	_, err = loader.Activate(ctx, "unknown")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestLoader_ActivateWithoutHistory(t *testing.T) {
	_, err := NewLoader(session.NewStore()).Activate(context.Background(), "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoader_HistoryFailureRemovesStoredFile(t *testing.T) {
	ctx := context.Background()
	repo := &MockDatasetRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*dataset.Upload")).Return(errors.DatabaseError("insert failed"))

	dir := t.TempDir()
	store := session.NewStore()
	loader := NewLoader(store, WithFileStorage(NewLocalFileStorageWithPath(dir)), WithHistory(repo))

	snap, err := loader.Load(ctx, strings.NewReader(financeCSV), "finance.csv")
	require.NoError(t, err)
	assert.False(t, snap.Recorded)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, snap.ID, current.ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, repo.uploads[snap.ID].StoragePath)
}

func TestLoader_ActivateMissingFile(t *testing.T) {
	ctx := context.Background()
	repo := &MockDatasetRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*dataset.Upload")).Return(nil)
	repo.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)

	loader := NewLoader(session.NewStore(),
		WithFileStorage(NewLocalFileStorageWithPath(t.TempDir())),
		WithHistory(repo),
	)
	snap, err := loader.Load(ctx, strings.NewReader(financeCSV), "finance.csv")
	require.NoError(t, err)
	require.NoError(t, os.Remove(repo.uploads[snap.ID].StoragePath))

	_, err = loader.Activate(ctx, snap.ID)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
