package bucket

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"hemapp/internal/app/server/api/http/middleware/auth"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	MaxUploadSize = 10 << 20
	formField     = "file"
)

var (
	bucketRe  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)
	objectRe  = regexp.MustCompile(`^[0-9a-f-]{36}\.[a-z0-9]{1,5}$`)
	allowExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true, ".gif": true}

	errBadBucket = errors.New("invalid bucket name")
	errBadType   = errors.New("unsupported file type")
)

// UploadResponse ответ на загрузку файла
type UploadResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Handler файловое хранилище: загрузка под токеном и публичная раздача
type Handler struct {
	dir       string
	publicURL string
	log       *slog.Logger
}

func NewHandler(dir, publicURL string, log *slog.Logger) *Handler {
	return &Handler{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With("component", "bucket_handler"),
	}
}

// SetupRoutes upload регистрируется в группе с авторизацией, раздача публичная
func (h *Handler) SetupRoutes(private, public chi.Router) {
	private.Post("/storage/v1/{bucket}", h.upload)
	public.Get("/storage/v1/object/public/{bucket}/{name}", h.download)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bucket := chi.URLParam(r, "bucket")
	if !bucketRe.MatchString(bucket) {
		writeError(w, http.StatusBadRequest, errBadBucket.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile(formField)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read form file %q: %v", formField, err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowExts[ext] {
		writeError(w, http.StatusUnsupportedMediaType, errBadType.Error())
		return
	}

	name := uuid.NewString() + ext
	if err := h.save(bucket, name, file); err != nil {
		h.log.Error("save upload", "bucket", bucket, "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	path := bucket + "/" + name
	h.log.Info("file uploaded", "user_id", userID, "path", path, "size", header.Size)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(UploadResponse{
		Path: path,
		URL:  h.publicURL + "/storage/v1/object/public/" + path,
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	name := chi.URLParam(r, "name")
	if !bucketRe.MatchString(bucket) || !objectRe.MatchString(name) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.dir, bucket, name))
}

func (h *Handler) save(bucket, name string, src io.Reader) error {
	dir := filepath.Join(h.dir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
