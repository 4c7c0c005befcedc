package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types (RFC 7807 "type" member)
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnsupportedType  = "/errors/unsupported-media-type"
	TypeUpstream         = "/errors/upstream"

	TypeSchema    = "/errors/input/schema"
	TypeDateParse = "/errors/input/date-parse"
	TypeLoad      = "/errors/input/unreadable"
)

// appErrorMapping is how an AppError type is presented over HTTP
type appErrorMapping struct {
	status      int
	problemType string
	title       string
	// hideDetail replaces the message, which may name server-side paths
	hideDetail bool
}

var appErrorMappings = map[ErrorType]appErrorMapping{
	ErrTypeSchema:     {http.StatusUnprocessableEntity, TypeSchema, "Missing Required Columns", false},
	ErrTypeParsing:    {http.StatusUnprocessableEntity, TypeLoad, "Unreadable Input", false},
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation, "Validation Failed", false},
	ErrTypeNotFound:   {http.StatusNotFound, TypeNotFound, "Resource Not Found", false},
	ErrTypeNetwork:    {http.StatusBadGateway, TypeUpstream, "Upstream Source Failed", true},
	ErrTypeStorage:    {http.StatusInternalServerError, TypeInternal, "Internal Server Error", true},
	ErrTypeConfig:     {http.StatusInternalServerError, TypeInternal, "Internal Server Error", true},
}

var apiStatusTypes = map[int]string{
	http.StatusBadRequest:            TypeValidation,
	http.StatusNotFound:              TypeNotFound,
	http.StatusRequestEntityTooLarge: TypePayloadTooLarge,
	http.StatusUnsupportedMediaType:  TypeUnsupportedType,
	http.StatusTooManyRequests:       TypeRateLimit,
}

const internalDetail = "An unexpected error occurred while processing your request"

// ErrorHandler renders every HTTP failure as RFC 7807 problem details
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds stack traces
// to 5xx responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError writes err as problem details. Client errors are logged at
// warn level, server errors at error level.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", string(debug.Stack()))
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to problem details without writing it
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", internalDetail, r.URL.Path)
}

func appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	m, ok := appErrorMappings[appErr.Type]
	if !ok {
		m = appErrorMapping{http.StatusInternalServerError, TypeInternal, "Internal Server Error", true}
	}
	if appErr.Type == ErrTypeParsing && errors.Is(appErr, ErrDateParse) {
		m.problemType = TypeDateParse
	}

	detail := appErr.Message
	if m.hideDetail {
		detail = internalDetail
	}

	problem := NewProblemDetails(m.status, m.problemType, m.title, detail, r.URL.Path).
		WithExtension("error_code", string(appErr.Type))
	if !m.hideDetail {
		for k, v := range appErr.Context {
			problem.WithExtension(k, v)
		}
	}
	return problem
}

func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := apiStatusTypes[apiErr.StatusCode]
	if !ok {
		problemType = TypeInternal
	}

	problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode),
		apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic answers 500 for a recovered panic
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())
	stack := string(debug.Stack())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", r.URL.Path).
		WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stack)
	}

	render.Render(w, r, problem)
}

// NotFound is the router's 404 handler
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}

// MethodNotAllowed is the router's 405 handler
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}

// Middleware recovers panics raised by downstream handlers.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
