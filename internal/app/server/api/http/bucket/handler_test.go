package bucket

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hemapp/internal/app/server/api/http/middleware/auth"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newRouter(t *testing.T, dir string) http.Handler {
	t.Helper()

	r := chi.NewRouter()
	private := r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), 1)))
		})
	})
	NewHandler(dir, "http://cdn.local/", slog.Default()).SetupRoutes(private, r)
	return r
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler_UploadAndDownload(t *testing.T) {
	dir := t.TempDir()
	router := newRouter(t, dir)

	body, ctype := multipartBody(t, "Lunch.JPG", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/storage/v1/meal-photos", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Path, "meal-photos/"))
	assert.True(t, strings.HasSuffix(resp.Path, ".jpg"))
	assert.Equal(t, "http://cdn.local/storage/v1/object/public/"+resp.Path, resp.URL)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(resp.Path)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(stored))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/v1/object/public/"+resp.Path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestHandler_UploadRejects(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		filename string
		wantCode int
	}{
		{name: "bad bucket", bucket: "Meal..Photos", filename: "a.jpg", wantCode: http.StatusBadRequest},
		{name: "bad extension", bucket: "meals", filename: "script.sh", wantCode: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, t.TempDir())
			body, ctype := multipartBody(t, tt.filename, []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/storage/v1/"+tt.bucket, body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_DownloadRejectsTraversal(t *testing.T) {
	router := newRouter(t, t.TempDir())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/v1/object/public/meals/..%2F..%2Fetc%2Fpasswd", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
