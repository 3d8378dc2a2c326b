package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/exporter"
	"lgpsreport/internal/services"
	"lgpsreport/internal/validation"
	"lgpsreport/pkg/contracts/domain"
)

// ReconstructRequest is the body of POST /api/v1/reconstruct.
type ReconstructRequest struct {
	Lines          []string `json:"lines" validate:"required,min=1"`
	Labels         []string `json:"labels,omitempty" validate:"omitempty,dive,required"`
	EntityColumn   string   `json:"entity_column,omitempty" validate:"omitempty,max=128"`
	IncludeRecords bool     `json:"include_records,omitempty"`
}

// ReconstructResponse carries the wide table in two shapes: structured rows
// and a header plus string rows ready for tabular display.
type ReconstructResponse struct {
	Table       *domain.PivotTable               `json:"table"`
	Header      []string                         `json:"header"`
	Rows        [][]string                       `json:"rows"`
	Records     []domain.FlatRecord              `json:"records,omitempty"`
	Diagnostics domain.ReconstructionDiagnostics `json:"diagnostics"`
}

// ParseNumericRequest is the body of POST /api/v1/parse-numeric.
type ParseNumericRequest struct {
	Values []string `json:"values" validate:"required,min=1,max=10000"`
}

// ParseNumericResponse lists the parsed values in input order.
type ParseNumericResponse struct {
	Values []services.ParsedValue `json:"values"`
}

// ReconstructHandler serves the reconstruction endpoints.
type ReconstructHandler struct {
	service   *services.ReconstructService
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    *slog.Logger
}

// NewReconstructHandler creates a new reconstruct handler
func NewReconstructHandler(service *services.ReconstructService, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *ReconstructHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconstructHandler{
		service:   service,
		validator: validation.NewValidator(),
		errors:    errorHandler,
		logger:    logger.With(slog.String("handler", "reconstruct")),
	}
}

// Reconstruct handles POST /api/v1/reconstruct
func (h *ReconstructHandler) Reconstruct(w http.ResponseWriter, r *http.Request) {
	var req ReconstructRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	res, err := h.service.Reconstruct(r.Context(), req.Lines, services.ReconstructOptions{
		Labels:       req.Labels,
		EntityColumn: req.EntityColumn,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	resp := ReconstructResponse{
		Table:       res.Table,
		Header:      res.Table.Header(),
		Rows:        exporter.PivotRows(res.Table),
		Diagnostics: res.Diagnostics,
	}
	if req.IncludeRecords {
		resp.Records = res.Records
	}
	render.JSON(w, r, resp)
}

// ParseNumeric handles POST /api/v1/parse-numeric
func (h *ReconstructHandler) ParseNumeric(w http.ResponseWriter, r *http.Request) {
	var req ParseNumericRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ParseNumericResponse{Values: h.service.ParseNumeric(req.Values)})
}
