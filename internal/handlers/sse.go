package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"

	"github.com/starfederation/datastar-go/datastar"
)

var metricsTemplate = template.Must(template.New("metricsRow").Parse(`
<div id="metrics-row" class="metrics-row">
<div class="metric-card"><div class="metric-label">Total revenue</div><div class="metric-value">{{.TotalRevenue}}</div></div>
<div class="metric-card"><div class="metric-label">Total quantity</div><div class="metric-value">{{.TotalQuantity}}</div></div>
<div class="metric-card"><div class="metric-label">Orders</div><div class="metric-value">{{.OrderCount}}</div></div>
<div class="metric-card"><div class="metric-label">Unique customers</div><div class="metric-value">{{.UniqueCustomers}}</div></div>
</div>`))

var customersTemplate = template.Must(template.New("customersTable").Parse(`
<div id="top-customers">
<h3>Top customers by revenue</h3>
<table class="modern-table">
<thead><tr><th>Customer</th><th>Revenue</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Name}}</td>
<td><strong>{{.Revenue}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// dashboardSignals mirrors the filter state the page keeps in its datastar
// signals.
type dashboardSignals struct {
	Filters struct {
		Start       string   `json:"start"`
		End         string   `json:"end"`
		Cities      []string `json:"cities"`
		Products    []string `json:"products"`
		Payments    []string `json:"payments"`
		Granularity string   `json:"granularity"`
	} `json:"filters"`
}

func (h *SSEHandlers) criteriaFromSignals(s dashboardSignals) (models.Criteria, error) {
	opts := h.analytics.Options()

	c := models.Criteria{
		Start:          opts.MinDate,
		End:            opts.MaxDate,
		Cities:         s.Filters.Cities,
		Products:       s.Filters.Products,
		PaymentMethods: s.Filters.Payments,
	}

	var err error
	if s.Filters.Start != "" {
		if c.Start, err = time.Parse(models.DateLayout, s.Filters.Start); err != nil {
			return models.Criteria{}, fmt.Errorf("start date: %w", err)
		}
	}
	if s.Filters.End != "" {
		if c.End, err = time.Parse(models.DateLayout, s.Filters.End); err != nil {
			return models.Criteria{}, fmt.Errorf("end date: %w", err)
		}
	}

	if c.Granularity, err = models.ParseGranularity(s.Filters.Granularity); err != nil {
		return models.Criteria{}, err
	}

	return c, c.Validate()
}

// HandleDashboard reruns the pipeline for the filter state carried in the
// request signals and patches the metrics row, the top-customers table and
// the chart data in one SSE response.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.writeError(w, r, errors.ValidationWrap(err, "malformed filter signals"))
		return
	}

	criteria, err := h.criteriaFromSignals(signals)
	if err != nil {
		h.writeError(w, r, errors.ValidationWrap(err, "invalid filter state"))
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchDashboard(sse, w, h.analytics.BuildViewModel(criteria))
}

// HandleResetFilters restores the full-dataset selection, pushes the reset
// control state back to the page, and recomputes everything.
func (h *SSEHandlers) HandleResetFilters(w http.ResponseWriter, r *http.Request) {
	criteria := h.analytics.DefaultCriteria()

	sse := datastar.NewSSE(w, r)

	filterState, err := json.Marshal(map[string]any{
		"filters": map[string]any{
			"start":       criteria.Start.Format(models.DateLayout),
			"end":         criteria.End.Format(models.DateLayout),
			"cities":      criteria.Cities,
			"products":    criteria.Products,
			"payments":    criteria.PaymentMethods,
			"granularity": string(criteria.Granularity),
		},
	})
	if err != nil {
		h.logger.Error("marshal filter state", "error", err)
		return
	}
	sse.PatchSignals(filterState)

	h.patchDashboard(sse, w, h.analytics.BuildViewModel(criteria))
}

func (h *SSEHandlers) patchDashboard(sse *datastar.ServerSentEventGenerator, w http.ResponseWriter, vm models.ViewModel) {
	metricsHTML, err := h.renderMetrics(vm.Summary)
	if err != nil {
		h.logger.Error("render metrics row", "error", err)
		return
	}
	sse.PatchElements(metricsHTML)

	customersHTML, err := h.renderTopCustomers(vm.TopCustomers)
	if err != nil {
		h.logger.Error("render top customers", "error", err)
		return
	}
	sse.PatchElements(customersHTML)

	chartSignals, err := json.Marshal(map[string]any{"charts": buildChartSignals(vm)})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(chartSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

type metricsView struct {
	TotalRevenue    string
	TotalQuantity   int
	OrderCount      int
	UniqueCustomers int
}

func (h *SSEHandlers) renderMetrics(summary models.Summary) (string, error) {
	var buf strings.Builder
	err := metricsTemplate.Execute(&buf, metricsView{
		TotalRevenue:    models.FormatCurrency(summary.TotalRevenue),
		TotalQuantity:   summary.TotalQuantity,
		OrderCount:      summary.OrderCount,
		UniqueCustomers: summary.UniqueCustomers,
	})
	return buf.String(), err
}

type customerRow struct {
	Name    string
	Revenue string
}

func (h *SSEHandlers) renderTopCustomers(customers []models.CustomerRevenue) (string, error) {
	rows := make([]customerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, customerRow{
			Name:    c.CustomerName,
			Revenue: models.FormatCurrency(c.Revenue),
		})
	}

	var buf strings.Builder
	err := customersTemplate.Execute(&buf, rows)
	return buf.String(), err
}

type barChart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type scatterChart struct {
	X    []int     `json:"x"`
	Y    []float64 `json:"y"`
	Size []float64 `json:"size"`
	Text []string  `json:"text"`
}

// buildChartSignals converts the view model into the array shapes Plotly
// consumes. Decimal revenue values become floats only here, at the chart
// edge.
func buildChartSignals(vm models.ViewModel) map[string]any {
	city := barChart{}
	for _, row := range vm.OrdersByCity {
		city.Labels = append(city.Labels, row.City)
		city.Values = append(city.Values, float64(row.Orders))
	}

	product := barChart{}
	for _, row := range vm.OrdersByProduct {
		product.Labels = append(product.Labels, row.Product)
		product.Values = append(product.Values, float64(row.Orders))
	}

	paymentCount := barChart{}
	for _, row := range vm.OrdersByPayment {
		paymentCount.Labels = append(paymentCount.Labels, row.PaymentMethod)
		paymentCount.Values = append(paymentCount.Values, float64(row.Orders))
	}

	paymentRevenue := barChart{}
	for _, row := range vm.RevenueByPayment {
		paymentRevenue.Labels = append(paymentRevenue.Labels, row.PaymentMethod)
		paymentRevenue.Values = append(paymentRevenue.Values, row.Revenue.InexactFloat64())
	}

	revenue := barChart{}
	for _, point := range vm.RevenueOverTime {
		revenue.Labels = append(revenue.Labels, point.Period.Format(models.DateLayout))
		revenue.Values = append(revenue.Values, point.Revenue.InexactFloat64())
	}

	scatter := scatterChart{}
	for _, point := range vm.OrderPoints {
		scatter.X = append(scatter.X, point.Quantity)
		scatter.Y = append(scatter.Y, point.UnitPrice)
		scatter.Size = append(scatter.Size, point.Revenue)
		scatter.Text = append(scatter.Text,
			fmt.Sprintf("%s / %s / %s", point.CustomerName, point.City, point.PaymentMethod))
	}

	return map[string]any{
		"city":           city,
		"product":        product,
		"paymentCount":   paymentCount,
		"paymentRevenue": paymentRevenue,
		"revenue":        revenue,
		"scatter":        scatter,
	}
}

func (h *SSEHandlers) writeError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
}
