package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finsight/internal/dataset"
	"finsight/internal/pages"
	"finsight/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const financeCSV = `Employee,Monthly Income (£),Electricity Bill (£),Gas Bill (£),Groceries (£),Savings for Property (£)
Alice,2000,60,40,200,300
Alice,2000,62,42,210,320
Bob,3000,80,55,300,600
Bob,3000,82,57,310,640
`

func newTestServer(t *testing.T) (*Server, *session.Store) {
	t.Helper()
	store := session.NewStore()
	loader := dataset.NewLoader(store, dataset.WithMaxBytes(1<<20))
	return NewServer(store, loader, pages.DefaultEnv(), zerolog.New(io.Discard)), store
}

func upload(t *testing.T, s *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body map[string]errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(s, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","dataset_loaded":false,"history":false}`, rec.Body.String())
}

func TestUploadAndCurrentDataset(t *testing.T) {
	s, store := newTestServer(t)

	rec := get(s, "/api/v1/dataset")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_DATA", decodeError(t, rec).Code)

	rec = upload(t, s, "finance.csv", financeCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var summary DatasetSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, []string{"Alice", "Bob"}, summary.Employees)

	snap, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, summary.ID, snap.ID)

	rec = get(s, "/api/v1/dataset")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadFailures(t *testing.T) {
	s, store := newTestServer(t)
	require.Equal(t, http.StatusCreated, upload(t, s, "finance.csv", financeCSV).Code)

	rec := upload(t, s, "broken.csv", "Employee,Gas Bill (£)\nAlice,1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARSE_FAILURE", decodeError(t, rec).Code)
	_, err := store.Current()
	assert.Error(t, err, "a failed upload clears the previous table")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", strings.NewReader("nope"))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestPages(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/api/v1/pages")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []PageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 5)
	assert.Equal(t, "correlation", list[0].Name)

	rec = get(s, "/api/v1/pages/correlation")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_DATA", decodeError(t, rec).Code)

	require.Equal(t, http.StatusCreated, upload(t, s, "finance.csv", financeCSV).Code)

	rec = get(s, "/api/v1/pages/correlation?columns=Monthly+Income+(%C2%A3)&columns=Savings+for+Property+(%C2%A3)")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		Name     string `json:"name"`
		Sections []struct {
			Title  string            `json:"title"`
			Charts []json.RawMessage `json:"charts"`
			Error  *struct {
				Kind string `json:"kind"`
			} `json:"error"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "correlation", page.Name)
	require.NotEmpty(t, page.Sections)
	assert.Nil(t, page.Sections[0].Error)
	assert.Len(t, page.Sections[0].Charts, 1)

	rec = get(s, "/api/v1/pages/correlation?columns=Monthly+Income+(%C2%A3)")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.NotNil(t, page.Sections[0].Error)
	assert.Equal(t, "INSUFFICIENT_SELECTION", page.Sections[0].Error.Kind)

	rec = get(s, "/api/v1/pages/budget")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestChartSVG(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, upload(t, s, "finance.csv", financeCSV).Code)

	rec := get(s, "/api/v1/pages/decision/sections/0/charts/0")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(s, "/api/v1/pages/correlation/sections/0/charts/0")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = get(s, "/api/v1/pages/correlation/sections/x/charts/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryWithoutDatabase(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(s, "/api/v1/datasets")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = get(s, "/api/v1/datasets?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/abc/activate", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
