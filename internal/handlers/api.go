package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	defaultTopCustomers = 10
	defaultOrderPoints  = 500
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// criteriaFromRequest builds filter criteria from query parameters. Absent
// parameters default to the full dataset: complete option universes and
// the dataset date bounds. A present but empty selection parameter is an
// empty set and matches nothing.
func (h *APIHandlers) criteriaFromRequest(r *http.Request) (models.Criteria, *errors.AppError) {
	opts := h.analytics.Options()
	q := r.URL.Query()

	c := models.Criteria{
		Start:          opts.MinDate,
		End:            opts.MaxDate,
		Cities:         opts.Cities,
		Products:       opts.Products,
		PaymentMethods: opts.PaymentMethods,
	}

	var err error
	if v := q.Get("start"); v != "" {
		if c.Start, err = time.Parse(models.DateLayout, v); err != nil {
			return models.Criteria{}, errors.ValidationWrap(err, "invalid start date")
		}
	}
	if v := q.Get("end"); v != "" {
		if c.End, err = time.Parse(models.DateLayout, v); err != nil {
			return models.Criteria{}, errors.ValidationWrap(err, "invalid end date")
		}
	}

	if values, ok := q["city"]; ok {
		c.Cities = splitMulti(values)
	}
	if values, ok := q["product"]; ok {
		c.Products = splitMulti(values)
	}
	if values, ok := q["payment"]; ok {
		c.PaymentMethods = splitMulti(values)
	}

	if c.Granularity, err = models.ParseGranularity(q.Get("granularity")); err != nil {
		return models.Criteria{}, errors.ValidationWrap(err, "invalid granularity")
	}

	if err := c.Validate(); err != nil {
		return models.Criteria{}, errors.ValidationWrap(err, "invalid filter criteria")
	}
	return c, nil
}

// splitMulti accepts both repeated parameters and comma-joined values.
func splitMulti(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *APIHandlers) positiveLimit(r *http.Request, fallback int) (int, *errors.AppError) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return 0, errors.Validation("limit must be a positive integer")
	}
	return limit, nil
}

func (h *APIHandlers) filteredView(r *http.Request) ([]models.Order, models.Criteria, *errors.AppError) {
	criteria, appErr := h.criteriaFromRequest(r)
	if appErr != nil {
		return nil, models.Criteria{}, appErr
	}
	return services.ApplyFilters(h.analytics.Dataset(), criteria), criteria, nil
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Options(), cacheHeaders)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.Summarize(view), cacheHeaders)
}

func (h *APIHandlers) HandleOrdersByCity(w http.ResponseWriter, r *http.Request) {
	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.CountByCity(view), cacheHeaders)
}

func (h *APIHandlers) HandleOrdersByProduct(w http.ResponseWriter, r *http.Request) {
	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.CountByProduct(view), cacheHeaders)
}

func (h *APIHandlers) HandleOrdersByPayment(w http.ResponseWriter, r *http.Request) {
	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.CountByPayment(view), cacheHeaders)
}

func (h *APIHandlers) HandleRevenueByPayment(w http.ResponseWriter, r *http.Request) {
	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.RevenueByPayment(view), cacheHeaders)
}

func (h *APIHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	limit, appErr := h.positiveLimit(r, defaultTopCustomers)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.TopCustomers(view, limit), cacheHeaders)
}

func (h *APIHandlers) HandleRevenueOverTime(w http.ResponseWriter, r *http.Request) {
	view, criteria, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.RevenueOverTime(view, criteria.Granularity), cacheHeaders)
}

func (h *APIHandlers) HandleOrderPoints(w http.ResponseWriter, r *http.Request) {
	limit, appErr := h.positiveLimit(r, defaultOrderPoints)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	view, _, appErr := h.filteredView(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, services.OrderPoints(view, limit), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
