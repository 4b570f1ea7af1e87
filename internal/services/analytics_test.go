package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// stubSource feeds canned orders (or a canned failure) into Analytics.Load.
type stubSource struct {
	orders []models.Order
	err    error
}

func (s *stubSource) Load(ctx context.Context) ([]models.Order, error) {
	return s.orders, s.err
}

func testOrders() []models.Order {
	return []models.Order{
		{
			OrderDate:     time.Date(2023, 1, 5, 9, 30, 0, 0, time.UTC),
			City:          "Paris",
			Product:       "Tablet",
			PaymentMethod: "card",
			CustomerName:  "Alice Martin",
			Quantity:      2,
			UnitPrice:     decimal.NewFromInt(10),
			MonthKey:      "2023-01",
		},
		{
			OrderDate:     time.Date(2023, 2, 10, 14, 0, 0, 0, time.UTC),
			City:          "Lyon",
			Product:       "Laptop",
			PaymentMethod: "cash",
			CustomerName:  "Bruno Keller",
			Quantity:      1,
			UnitPrice:     decimal.NewFromInt(50),
			MonthKey:      "2023-02",
		},
		{
			OrderDate:     time.Date(2023, 4, 20, 11, 15, 0, 0, time.UTC),
			City:          "Paris",
			Product:       "Laptop",
			PaymentMethod: "card",
			CustomerName:  "Alice Martin",
			Quantity:      3,
			UnitPrice:     decimal.NewFromInt(100),
			MonthKey:      "2023-04",
		},
	}
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	if len(a.Dataset()) != 0 {
		t.Error("new analytics should start with an empty dataset")
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	if got := len(a.Dataset()); got != 3 {
		t.Errorf("expected 3 records, got %d", got)
	}

	opts := a.Options()

	wantCities := []string{"Lyon", "Paris"}
	if len(opts.Cities) != len(wantCities) {
		t.Fatalf("expected %d cities, got %d", len(wantCities), len(opts.Cities))
	}
	for i, city := range wantCities {
		if opts.Cities[i] != city {
			t.Errorf("cities[%d] = %q, want %q (sorted ascending)", i, opts.Cities[i], city)
		}
	}

	if len(opts.Products) != 2 || opts.Products[0] != "Laptop" || opts.Products[1] != "Tablet" {
		t.Errorf("unexpected product universe: %v", opts.Products)
	}

	if len(opts.PaymentMethods) != 2 {
		t.Errorf("expected 2 payment methods, got %v", opts.PaymentMethods)
	}

	// Date bounds come from the full dataset, truncated to calendar dates.
	wantMin := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	wantMax := time.Date(2023, 4, 20, 0, 0, 0, 0, time.UTC)
	if !opts.MinDate.Equal(wantMin) {
		t.Errorf("MinDate = %v, want %v", opts.MinDate, wantMin)
	}
	if !opts.MaxDate.Equal(wantMax) {
		t.Errorf("MaxDate = %v, want %v", opts.MaxDate, wantMax)
	}
}

func TestAnalytics_Load(t *testing.T) {
	a := NewAnalytics()

	err := a.Load(context.Background(), &stubSource{orders: testOrders()})
	if err != nil {
		t.Fatalf("Load() with a working source should not error, got: %v", err)
	}
	if got := len(a.Dataset()); got != 3 {
		t.Errorf("expected 3 records after load, got %d", got)
	}
}

func TestAnalytics_Load_SourceFailure(t *testing.T) {
	a := NewAnalytics()

	err := a.Load(context.Background(), &stubSource{err: fmt.Errorf("connection refused")})
	if err == nil {
		t.Fatal("Load() should propagate source errors")
	}
	if len(a.Dataset()) != 0 {
		t.Error("a failed load must not leave a partial dataset behind")
	}
}

func TestAnalytics_DefaultCriteria(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	c := a.DefaultCriteria()
	opts := a.Options()

	if !c.Start.Equal(opts.MinDate) || !c.End.Equal(opts.MaxDate) {
		t.Errorf("default criteria should span the dataset date bounds, got [%v, %v]", c.Start, c.End)
	}
	if len(c.Cities) != len(opts.Cities) || len(c.Products) != len(opts.Products) {
		t.Error("default criteria should select the full option universes")
	}
	if c.Granularity != models.DefaultGranularity {
		t.Errorf("default granularity = %q, want %q", c.Granularity, models.DefaultGranularity)
	}

	// The default selection must match every record.
	vm := a.BuildViewModel(c)
	if vm.Summary.OrderCount != 3 {
		t.Errorf("default criteria matched %d orders, want 3", vm.Summary.OrderCount)
	}
}

func TestAnalytics_BuildViewModel(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	vm := a.BuildViewModel(a.DefaultCriteria())

	if vm.Summary.OrderCount != 3 {
		t.Errorf("OrderCount = %d, want 3", vm.Summary.OrderCount)
	}
	if vm.Summary.TotalQuantity != 6 {
		t.Errorf("TotalQuantity = %d, want 6", vm.Summary.TotalQuantity)
	}
	if want := decimal.NewFromInt(370); !vm.Summary.TotalRevenue.Equal(want) {
		t.Errorf("TotalRevenue = %s, want %s", vm.Summary.TotalRevenue, want)
	}
	if vm.Summary.UniqueCustomers != 2 {
		t.Errorf("UniqueCustomers = %d, want 2", vm.Summary.UniqueCustomers)
	}

	if len(vm.OrdersByCity) != 2 || vm.OrdersByCity[0].City != "Paris" {
		t.Errorf("unexpected OrdersByCity: %v", vm.OrdersByCity)
	}
	if len(vm.TopCustomers) != 2 || vm.TopCustomers[0].CustomerName != "Alice Martin" {
		t.Errorf("unexpected TopCustomers: %v", vm.TopCustomers)
	}
	if len(vm.RevenueOverTime) != 3 {
		t.Errorf("expected 3 daily revenue points, got %d", len(vm.RevenueOverTime))
	}
	if len(vm.OrderPoints) != 3 {
		t.Errorf("expected 3 order points, got %d", len(vm.OrderPoints))
	}
}

func TestAnalytics_BuildViewModel_RestrictedCity(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	c := a.DefaultCriteria()
	c.Cities = []string{"Lyon"}

	vm := a.BuildViewModel(c)

	if vm.Summary.OrderCount != 1 {
		t.Errorf("OrderCount = %d, want 1", vm.Summary.OrderCount)
	}
	if want := decimal.NewFromInt(50); !vm.Summary.TotalRevenue.Equal(want) {
		t.Errorf("TotalRevenue = %s, want %s", vm.Summary.TotalRevenue, want)
	}
	if len(vm.OrdersByCity) != 1 || vm.OrdersByCity[0].City != "Lyon" {
		t.Errorf("unexpected OrdersByCity: %v", vm.OrdersByCity)
	}
}

func TestAnalytics_BuildViewModel_EmptySelection(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	c := a.DefaultCriteria()
	c.Cities = nil

	vm := a.BuildViewModel(c)

	if vm.Summary.OrderCount != 0 || vm.Summary.TotalQuantity != 0 || vm.Summary.UniqueCustomers != 0 {
		t.Errorf("empty selection should yield zero metrics, got %+v", vm.Summary)
	}
	if !vm.Summary.TotalRevenue.IsZero() {
		t.Errorf("TotalRevenue = %s, want 0", vm.Summary.TotalRevenue)
	}
	if len(vm.OrdersByCity) != 0 || len(vm.OrdersByProduct) != 0 || len(vm.OrdersByPayment) != 0 ||
		len(vm.RevenueByPayment) != 0 || len(vm.TopCustomers) != 0 ||
		len(vm.RevenueOverTime) != 0 || len(vm.OrderPoints) != 0 {
		t.Error("empty selection should yield empty aggregation sequences")
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := NewAnalytics()

	vm := a.BuildViewModel(a.DefaultCriteria())
	if vm.Summary.OrderCount != 0 {
		t.Errorf("OrderCount = %d, want 0", vm.Summary.OrderCount)
	}
	if len(vm.OrdersByCity) != 0 || len(vm.TopCustomers) != 0 || len(vm.RevenueOverTime) != 0 {
		t.Error("empty dataset should yield empty aggregation sequences")
	}

	stats := a.Stats()
	if stats["record_count"] != 0 {
		t.Errorf("record_count = %v, want 0", stats["record_count"])
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	stats := a.Stats()

	if stats["record_count"] != 3 {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
	if stats["cities"] != 2 {
		t.Errorf("cities = %v, want 2", stats["cities"])
	}
	if stats["months"] != 3 {
		t.Errorf("months = %v, want 3", stats["months"])
	}
	if stats["min_date"] != "2023-01-05" {
		t.Errorf("min_date = %v, want 2023-01-05", stats["min_date"])
	}
	if stats["max_date"] != "2023-04-20" {
		t.Errorf("max_date = %v, want 2023-04-20", stats["max_date"])
	}
}

// Any number of pipeline passes may run in parallel against the shared
// immutable dataset.
func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics()
	a.SetData(testOrders())

	criteria := []models.Criteria{
		a.DefaultCriteria(),
		{Cities: []string{"Paris"}, Products: []string{"Laptop", "Tablet"}, PaymentMethods: []string{"card"}},
		{Cities: []string{"Lyon"}, Products: []string{"Laptop"}, PaymentMethods: []string{"cash"}, Granularity: models.Monthly},
	}

	done := make(chan bool, 12)
	for i := 0; i < 12; i++ {
		go func() {
			defer func() { done <- true }()

			// These should not panic or observe inconsistent data.
			_ = a.BuildViewModel(criteria[i%len(criteria)])
			_ = a.Options()
			_ = a.Stats()
		}()
	}

	for i := 0; i < 12; i++ {
		<-done
	}
}

// Benchmark tests for performance validation
func BenchmarkAnalytics_BuildViewModel(b *testing.B) {
	a := NewAnalytics()
	cities := []string{"Paris", "Lyon", "Marseille", "Lille", "Nantes"}
	products := []string{"Laptop", "Tablet", "Phone", "Monitor"}
	payments := []string{"card", "cash", "transfer"}

	orders := make([]models.Order, 5000)
	for i := range orders {
		orders[i] = models.Order{
			OrderDate:     time.Date(2023, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC),
			City:          cities[i%len(cities)],
			Product:       products[i%len(products)],
			PaymentMethod: payments[i%len(payments)],
			CustomerName:  fmt.Sprintf("Customer %d", i%200),
			Quantity:      i%5 + 1,
			UnitPrice:     decimal.NewFromInt(int64(i%90 + 10)),
		}
	}
	a.SetData(orders)
	c := a.DefaultCriteria()
	c.Granularity = models.Monthly

	b.ResetTimer()
	for b.Loop() {
		_ = a.BuildViewModel(c)
	}
}

func BenchmarkApplyFilters(b *testing.B) {
	orders := make([]models.Order, 10000)
	for i := range orders {
		orders[i] = models.Order{
			OrderDate:     time.Date(2023, time.Month(i%12+1), i%28+1, 0, 0, 0, 0, time.UTC),
			City:          fmt.Sprintf("City %d", i%20),
			Product:       fmt.Sprintf("Product %d", i%10),
			PaymentMethod: "card",
			CustomerName:  fmt.Sprintf("Customer %d", i%500),
			Quantity:      1,
			UnitPrice:     decimal.NewFromInt(25),
		}
	}

	c := models.Criteria{
		Start:          time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC),
		Cities:         []string{"City 1", "City 2", "City 3"},
		Products:       []string{"Product 1", "Product 2"},
		PaymentMethods: []string{"card"},
	}

	b.ResetTimer()
	for b.Loop() {
		_ = ApplyFilters(orders, c)
	}
}
