package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "salarypulse/internal/errors"
	"salarypulse/internal/middleware"
	"salarypulse/internal/services"
)

// DataHandler handles salary data HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/filters", h.GetFilterOptions)
	r.Get("/summary", h.GetSummary)
	r.Get("/records", h.GetRecords)

	r.Route("/aggregates", func(r chi.Router) {
		r.Get("/yearly", h.GetYearlyMeans)
		r.Get("/salary-distribution", h.GetSalaryDistribution)
		r.Get("/company-size", h.GetCompanySizeMeans)
		r.Get("/remote", h.GetRemoteGroupMeans)
		r.Get("/country", h.GetCountryMeans)
		r.Get("/experience", h.GetExperienceDistributions)
		r.Get("/employment", h.GetEmploymentDistributions)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/csv", h.ExportCSV)
		r.Get("/xlsx", h.ExportExcel)
	})

	return r
}

// GetFilterOptions handles GET /api/data/filters
func (h *DataHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	options, err := h.service.GetFilterOptions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get filter options",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   options,
	})
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterRequest(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute summary",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
		"count":  summary.Count,
	})
}

// GetYearlyMeans handles GET /api/data/aggregates/yearly
func (h *DataHandler) GetYearlyMeans(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "yearly", func(req services.FilterRequest) (interface{}, int, error) {
		means, err := h.service.GetYearlyMeans(r.Context(), req)
		return means, len(means), err
	})
}

// GetSalaryDistribution handles GET /api/data/aggregates/salary-distribution
func (h *DataHandler) GetSalaryDistribution(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "salary-distribution", func(req services.FilterRequest) (interface{}, int, error) {
		bins, err := h.service.GetSalaryDistribution(r.Context(), req)
		return bins, len(bins), err
	})
}

// GetCompanySizeMeans handles GET /api/data/aggregates/company-size
func (h *DataHandler) GetCompanySizeMeans(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "company-size", func(req services.FilterRequest) (interface{}, int, error) {
		means, err := h.service.GetCompanySizeMeans(r.Context(), req)
		return means, len(means), err
	})
}

// GetRemoteGroupMeans handles GET /api/data/aggregates/remote
func (h *DataHandler) GetRemoteGroupMeans(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "remote", func(req services.FilterRequest) (interface{}, int, error) {
		means, err := h.service.GetRemoteGroupMeans(r.Context(), req)
		return means, len(means), err
	})
}

// GetCountryMeans handles GET /api/data/aggregates/country
func (h *DataHandler) GetCountryMeans(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "country", func(req services.FilterRequest) (interface{}, int, error) {
		means, err := h.service.GetCountryMeans(r.Context(), req)
		return means, len(means), err
	})
}

// GetExperienceDistributions handles GET /api/data/aggregates/experience
func (h *DataHandler) GetExperienceDistributions(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "experience", func(req services.FilterRequest) (interface{}, int, error) {
		dists, err := h.service.GetExperienceDistributions(r.Context(), req)
		return dists, len(dists), err
	})
}

// GetEmploymentDistributions handles GET /api/data/aggregates/employment
func (h *DataHandler) GetEmploymentDistributions(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, "employment", func(req services.FilterRequest) (interface{}, int, error) {
		dists, err := h.service.GetEmploymentDistributions(r.Context(), req)
		return dists, len(dists), err
	})
}

// GetRecords handles GET /api/data/records
func (h *DataHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterRequest(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.GetRecords(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get records",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// ExportCSV handles GET /api/data/export/csv
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", h.service.ExportCSV)
}

// ExportExcel handles GET /api/data/export/xlsx
func (h *DataHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.service.ExportExcel)
}

// export renders the filtered set into a buffer before any header is
// written, so filter validation failures still produce a problem response
// instead of a 200 with an empty attachment.
func (h *DataHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(context.Context, io.Writer, services.FilterRequest) error) {
	req, err := parseFilterRequest(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := write(r.Context(), &buf, req); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", ext),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.handleServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("salaries_%s.%s", time.Now().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		// Headers are already written; log and drop the connection
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("format", ext),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// aggregate is the shared handler body for the aggregation endpoints
func (h *DataHandler) aggregate(w http.ResponseWriter, r *http.Request, name string, compute func(services.FilterRequest) (interface{}, int, error)) {
	req, err := parseFilterRequest(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, count, err := compute(req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "aggregation failed",
			slog.String("aggregation", name),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// handleServiceError maps service errors to API errors before delegating
// to the RFC 7807 error handler.
func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidFilter):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"INVALID_FILTER",
			err.Error(),
		))
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusServiceUnavailable,
			"DATASET_NOT_LOADED",
			"Salary dataset is not loaded",
		))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// parseFilterRequest translates query parameters into a filter request.
// Repeated keys select multiple values; an absent key means "all".
func parseFilterRequest(query url.Values) (services.FilterRequest, error) {
	req := services.DefaultFilterRequest()

	req.ExperienceLevels = query["experience_level"]
	req.EmploymentTypes = query["employment_type"]
	req.CompanySizes = query["company_size"]
	req.Countries = query["country"]

	for _, raw := range query["year"] {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return req, apierrors.ErrValidation("year", fmt.Sprintf("invalid year %q", raw))
		}
		req.Years = append(req.Years, year)
	}

	if raw := query.Get("remote_min"); raw != "" {
		min, err := strconv.Atoi(raw)
		if err != nil {
			return req, apierrors.ErrValidation("remote_min", fmt.Sprintf("invalid remote_min %q", raw))
		}
		req.RemoteMin = min
	}
	if raw := query.Get("remote_max"); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil {
			return req, apierrors.ErrValidation("remote_max", fmt.Sprintf("invalid remote_max %q", raw))
		}
		req.RemoteMax = max
	}

	return req, nil
}
