package http

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salescli/internal/dataprocessing"
	apierrors "salescli/internal/errors"
	"salescli/internal/exporter"
	"salescli/internal/middleware"
	"salescli/pkg/contracts/domain"
)

// Accepted upload media types
const (
	MediaTypeMultipart = "multipart/form-data"
	MediaTypeCSV       = "text/csv"

	// UploadField is the multipart field carrying the spreadsheet
	UploadField = "file"

	// csvUploadName names a raw text/csv body for the loader
	csvUploadName = "upload.csv"

	multipartMemory = 8 << 20
)

// SummaryHandler turns uploaded spreadsheets into summary documents
type SummaryHandler struct {
	service        SummaryServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service SummaryServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SummaryHandler {
	return &SummaryHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "summary_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the summary routes
func (h *SummaryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(
		middleware.ContentTypeValidator(h.errorHandler, MediaTypeMultipart, MediaTypeCSV),
		middleware.MaxBodySize(h.maxUploadBytes),
	).Post("/", h.CreateSummary)

	return r
}

// CreateSummary handles POST /api/v1/summaries. The body is either a
// multipart form with the spreadsheet in the "file" field or a raw CSV.
func (h *SummaryHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		summary domain.SalesSummary
		err     error
		name    = csvUploadName
	)

	if mediaType == MediaTypeCSV {
		summary, err = h.service.SummarizeReader(ctx, r.Body, name)
	} else {
		if perr := r.ParseMultipartForm(multipartMemory); perr != nil {
			h.handleUploadError(w, r, perr)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, ferr := r.FormFile(UploadField)
		if ferr != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrMissingUpload)
			return
		}
		defer file.Close()

		name = header.Filename
		if !dataprocessing.IsSupported(name) {
			h.errorHandler.HandleError(w, r, apierrors.UnsupportedFileType(name))
			return
		}
		summary, err = h.service.SummarizeReader(ctx, file, name)
	}
	if err != nil {
		h.handleUploadError(w, r, err)
		return
	}

	data, err := exporter.MarshalSummary(summary, false)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "summary created",
		slog.String("upload", name),
		slog.Int("rows", summary.RowCount))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleUploadError maps an oversized body to 413 and malformed multipart
// bodies to 400. Everything else goes through the error handler unchanged.
func (h *SummaryHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			apierrors.ErrPayloadTooLarge.ErrorCode,
			apierrors.ErrPayloadTooLarge.Message,
			map[string]interface{}{"max_bytes": maxErr.Limit},
		))
		return
	}
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
