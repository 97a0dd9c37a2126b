package uploads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/feattrack/internal/blobstore"
	"github.com/good-yellow-bee/feattrack/internal/metrics"
)

// Response helpers
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

// UploadResponse carries the public URL of a stored image.
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type Handler struct {
	blobs       blobstore.Store
	development bool
}

func NewHandler(blobs blobstore.Store, development bool) *Handler {
	return &Handler{blobs: blobs, development: development}
}

// Upload accepts a multipart image under the "file" field, validates it
// against the type and size allow-lists, and stores it under a sanitized,
// timestamp-prefixed name so concurrent uploads of the same filename cannot
// collide.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// The multipart reader enforces the cap; the declared header size is
	// checked first so oversized uploads fail before the body is read.
	r.Body = http.MaxBytesReader(w, r.Body, blobstore.MaxUploadSize+4096)

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := blobstore.ValidateUpload(header.Filename, contentType, header.Size); err != nil {
		metrics.UploadsRejectedTotal.Inc()
		status := http.StatusBadRequest
		if errors.Is(err, blobstore.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		jsonError(w, status, errCodeValidationFailed, err.Error())
		return
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), blobstore.SanitizeFilename(header.Filename))

	data := io.LimitReader(file, blobstore.MaxUploadSize)
	url, err := h.blobs.Put(r.Context(), name, contentType, data)
	if err != nil {
		log.Printf("upload error: %v", err)
		msg := "failed to store upload"
		if h.development {
			msg = err.Error()
		}
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, msg)
		return
	}

	metrics.UploadsTotal.Inc()
	metrics.UploadBytesTotal.Add(float64(header.Size))
	log.Printf("upload stored: %s (%d bytes)", name, header.Size)
	jsonCreated(w, &UploadResponse{URL: url, Filename: name, Size: header.Size})
}
