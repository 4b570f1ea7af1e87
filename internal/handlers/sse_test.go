package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// signalsRequest carries the page's filter signals the way datastar sends
// them on GET: JSON in the "datastar" query parameter.
func signalsRequest(t *testing.T, path string, filters map[string]any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(map[string]any{"filters": filters})
	if err != nil {
		t.Fatal(err)
	}

	q := url.Values{"datastar": {string(payload)}}
	return httptest.NewRequest(http.MethodGet, path+"?"+q.Encode(), nil)
}

func fullUniverseFilters() map[string]any {
	return map[string]any{
		"start":       "2023-01-01",
		"end":         "2023-12-31",
		"cities":      []string{"Paris", "Lyon"},
		"products":    []string{"Tablet", "Laptop"},
		"payments":    []string{"card", "cash"},
		"granularity": "daily",
	}
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := signalsRequest(t, "/sse/dashboard", fullUniverseFilters())
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected cache-control 'no-cache', got %q", cc)
	}

	body := w.Body.String()

	// One pass patches the metrics row, the top-customers table and the
	// chart signals.
	for _, content := range []string{
		`<div id="metrics-row"`,
		"€370.00",
		`<div id="top-customers"`,
		"Alice Martin",
		"charts",
		"paymentRevenue",
	} {
		if !strings.Contains(body, content) {
			t.Errorf("response should contain %q", content)
		}
	}
}

func TestSSEHandlers_HandleDashboard_CityRestriction(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	filters := fullUniverseFilters()
	filters["cities"] = []string{"Lyon"}
	req := signalsRequest(t, "/sse/dashboard", filters)
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "€50.00") {
		t.Error("Lyon-only selection should total €50.00")
	}
	if !strings.Contains(body, "Bruno Keller") {
		t.Error("top customers should list the remaining Lyon customer")
	}
	if strings.Contains(body, "Alice Martin") {
		t.Error("filtered-out customers must not appear")
	}
}

func TestSSEHandlers_HandleDashboard_EmptySelection(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	filters := fullUniverseFilters()
	filters["cities"] = []string{}
	req := signalsRequest(t, "/sse/dashboard", filters)
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	// An empty selection is a valid, zero-valued dashboard, not an error.
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "€0.00") {
		t.Error("empty selection should render zero revenue")
	}
}

func TestSSEHandlers_HandleDashboard_InvalidSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	reversed := fullUniverseFilters()
	reversed["start"], reversed["end"] = "2023-12-31", "2023-01-01"

	badDate := fullUniverseFilters()
	badDate["start"] = "01/05/2023"

	badGranularity := fullUniverseFilters()
	badGranularity["granularity"] = "weekly"

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"missing signals", httptest.NewRequest(http.MethodGet, "/sse/dashboard", nil)},
		{"reversed range", signalsRequest(t, "/sse/dashboard", reversed)},
		{"malformed date", signalsRequest(t, "/sse/dashboard", badDate)},
		{"unknown granularity", signalsRequest(t, "/sse/dashboard", badGranularity)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.HandleDashboard(w, tt.req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("expected JSON error envelope: %v", err)
			}
			if success, ok := response["success"].(bool); !ok || success {
				t.Error("expected success=false in error response")
			}
		})
	}
}

func TestSSEHandlers_HandleResetFilters(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/reset-filters", nil)
	w := httptest.NewRecorder()

	handlers.HandleResetFilters(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()

	// The reset pushes the full-universe control state back to the page and
	// recomputes everything from it.
	for _, content := range []string{
		`"start":"2023-01-05"`,
		`"end":"2023-04-20"`,
		"Lyon",
		"Paris",
		`<div id="metrics-row"`,
		"€370.00",
	} {
		if !strings.Contains(body, content) {
			t.Errorf("response should contain %q", content)
		}
	}
}

func TestSSEHandlers_renderMetrics(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	html, err := handlers.renderMetrics(models.Summary{
		TotalQuantity:   6,
		TotalRevenue:    decimal.RequireFromString("1234.5"),
		OrderCount:      3,
		UniqueCustomers: 2,
	})
	if err != nil {
		t.Fatalf("renderMetrics() failed: %v", err)
	}

	for _, content := range []string{
		`id="metrics-row"`,
		"€1,234.50",
		">6<",
		">3<",
		">2<",
	} {
		if !strings.Contains(html, content) {
			t.Errorf("expected metrics HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderTopCustomers(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name      string
		customers []models.CustomerRevenue
		contains  []string
	}{
		{
			name: "ranked rows",
			customers: []models.CustomerRevenue{
				{CustomerName: "Alice Martin", Revenue: decimal.NewFromInt(320)},
				{CustomerName: "Bruno Keller", Revenue: decimal.NewFromInt(50)},
			},
			contains: []string{"Alice Martin", "€320.00", "Bruno Keller", "€50.00"},
		},
		{
			name:      "empty view still renders the table shell",
			customers: nil,
			contains:  []string{`id="top-customers"`, "<table", "</table>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := handlers.renderTopCustomers(tt.customers)
			if err != nil {
				t.Fatalf("renderTopCustomers() failed: %v", err)
			}
			for _, content := range tt.contains {
				if !strings.Contains(html, content) {
					t.Errorf("expected HTML to contain %q", content)
				}
			}
		})
	}
}

func TestBuildChartSignals(t *testing.T) {
	analytics := createTestAnalytics()
	vm := analytics.BuildViewModel(analytics.DefaultCriteria())

	signals := buildChartSignals(vm)

	for _, key := range []string{"city", "product", "paymentCount", "paymentRevenue", "revenue", "scatter"} {
		if _, ok := signals[key]; !ok {
			t.Errorf("chart signals missing %q", key)
		}
	}

	city, ok := signals["city"].(barChart)
	if !ok {
		t.Fatalf("city signal has wrong type: %T", signals["city"])
	}
	if len(city.Labels) != 2 || city.Labels[0] != "Paris" {
		t.Errorf("unexpected city labels: %v", city.Labels)
	}
	if len(city.Values) != 2 || city.Values[0] != 2 {
		t.Errorf("unexpected city values: %v", city.Values)
	}

	scatter := signals["scatter"].(scatterChart)
	if len(scatter.X) != 3 || len(scatter.Size) != 3 || len(scatter.Text) != 3 {
		t.Errorf("scatter should carry one point per order, got %d/%d/%d",
			len(scatter.X), len(scatter.Size), len(scatter.Text))
	}
	if !strings.Contains(scatter.Text[0], "Paris") {
		t.Errorf("scatter hover text should name the city, got %q", scatter.Text[0])
	}
}

// Every SSE endpoint shares the event-stream headers.
func TestSSEHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	endpoints := []struct {
		name    string
		req     *http.Request
		handler http.HandlerFunc
	}{
		{"dashboard", signalsRequest(t, "/sse/dashboard", fullUniverseFilters()), handlers.HandleDashboard},
		{"reset-filters", httptest.NewRequest(http.MethodGet, "/sse/reset-filters", nil), handlers.HandleResetFilters},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			endpoint.handler(w, endpoint.req)

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("expected cache-control 'no-cache', got %q", cc)
			}

			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
		})
	}
}
