// Package handler is the thin HTTP layer over the registration service. It
// owns request decoding and the wire envelope; business rules stay in the
// service and the shared validator.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"enroll/internal/platform/metrics"
	"enroll/internal/platform/middleware"
	"enroll/internal/register/models"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/httputil"
	"enroll/pkg/requestcontext"
)

// Service defines the registration operation the handler delegates to.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (models.RegisteredUser, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		metrics: metrics,
	}
}

// Register mounts the registration API with its middleware chain.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.RequestTime)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.Latency(h.metrics))
	api.MethodNotAllowed(h.handleMethodNotAllowed)
	api.Post("/register", h.handleRegister)

	r.Mount("/api", api)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "undecodable register request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, decodeError(err))
		return
	}

	user, err := h.service.Register(ctx, &req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "registration failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		} else {
			h.logger.WarnContext(ctx, "registration rejected",
				"request_id", requestcontext.RequestID(ctx),
				"field", dErrors.FieldOf(err),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "User registered successfully", models.RegisterData{User: user})
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeMethodNotAllowed, "Method not allowed, use POST"))
}

// decodeError keeps parse failures at 400 where the failure is clearly the
// caller's JSON, and 500 for transport-level read errors.
func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return dErrors.New(dErrors.CodeBadRequest, "Invalid input data")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "reading request body failed")
}
