package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/services"
	"lgpsreport/internal/validation"
)

// RunRequest is the body of POST /api/v1/runs. An empty body uses the
// configured formats.
type RunRequest struct {
	Formats []string `json:"formats,omitempty" validate:"omitempty,dive,oneof=csv xlsx md html docx"`
}

// OperationsHandler handles pipeline runs.
type OperationsHandler struct {
	service   *services.OperationsService
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    *slog.Logger
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(service *services.OperationsService, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *OperationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		service:   service,
		validator: validation.NewValidator(),
		errors:    errorHandler,
		logger:    logger.With(slog.String("handler", "operations")),
	}
}

// Run handles POST /api/v1/runs. The response is the run summary; a failed
// run is reported as problem details with the summary attached.
func (h *OperationsHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, h.validator, &req); err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
	}

	resp, err := h.service.Run(r.Context(), req.Formats)
	switch {
	case errors.Is(err, services.ErrOperationRunning):
		h.errors.HandleError(w, r, apperrors.Conflict(apperrors.CodeOperationRunning, err.Error()))
	case err != nil:
		problem := h.errors.ErrorToProblem(err, r)
		if resp != nil {
			problem.WithExtension("operation", resp)
		}
		h.logger.WarnContext(r.Context(), "Run failed", slog.String("error", err.Error()))
		_ = render.Render(w, r, problem)
	default:
		render.JSON(w, r, resp)
	}
}

// Status handles GET /api/v1/runs
func (h *OperationsHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}

// Progress handles GET /api/v1/runs/{id}
func (h *OperationsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Progress(chi.URLParam(r, "id"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, p)
}
