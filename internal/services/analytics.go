package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/store"
)

const (
	topCustomerLimit  = 10
	scatterPointLimit = 500
)

// Analytics holds the immutable dataset snapshot and its derived filter
// universes behind an RWMutex. The dataset is written once at load (or via
// SetData in tests); every request reads the same snapshot and runs the
// pure pipeline against it.
type Analytics struct {
	mu       sync.RWMutex
	dataset  []models.Order
	options  models.FilterOptions
	loadedAt time.Time
	logger   *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{logger: slog.Default()}
}

// Load pulls the dataset from the configured source once at startup. Any
// source error is fatal to the caller; there is no partial dashboard.
func (a *Analytics) Load(ctx context.Context, source store.Source) error {
	start := time.Now()

	orders, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	a.SetData(orders)

	a.logger.Info("dataset ready",
		"records", len(orders),
		"duration", time.Since(start))
	return nil
}

// SetData replaces the dataset and rederives the filter option universes
// from the full, unfiltered data.
func (a *Analytics) SetData(orders []models.Order) {
	options := buildOptions(orders)

	a.mu.Lock()
	a.dataset = orders
	a.options = options
	a.loadedAt = time.Now()
	a.mu.Unlock()

	observability.SetDatasetRecords(len(orders))
}

func (a *Analytics) Dataset() []models.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

// Options returns the selectable filter universes derived at load time.
func (a *Analytics) Options() models.FilterOptions {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.options
}

// DefaultCriteria selects the entire dataset: full universes, dataset date
// bounds, daily buckets. Used for first render and filter resets.
func (a *Analytics) DefaultCriteria() models.Criteria {
	return models.AllOptions(a.Options(), models.DefaultGranularity)
}

// BuildViewModel runs the full pipeline for one criteria state: filter,
// summarize, aggregate. Stateless per call; safe for any number of
// concurrent requests.
func (a *Analytics) BuildViewModel(c models.Criteria) models.ViewModel {
	start := time.Now()
	view := ApplyFilters(a.Dataset(), c)

	vm := models.ViewModel{
		Summary:          Summarize(view),
		OrdersByCity:     CountByCity(view),
		OrdersByProduct:  CountByProduct(view),
		OrdersByPayment:  CountByPayment(view),
		RevenueByPayment: RevenueByPayment(view),
		TopCustomers:     TopCustomers(view, topCustomerLimit),
		RevenueOverTime:  RevenueOverTime(view, c.Granularity),
		OrderPoints:      OrderPoints(view, scatterPointLimit),
	}

	observability.ObservePipeline(time.Since(start), len(view))
	return vm
}

func buildOptions(orders []models.Order) models.FilterOptions {
	cities := make(map[string]struct{})
	products := make(map[string]struct{})
	payments := make(map[string]struct{})

	var opts models.FilterOptions
	for i, order := range orders {
		cities[order.City] = struct{}{}
		products[order.Product] = struct{}{}
		payments[order.PaymentMethod] = struct{}{}

		day := models.Daily.BucketOf(order.OrderDate)
		if i == 0 || day.Before(opts.MinDate) {
			opts.MinDate = day
		}
		if i == 0 || day.After(opts.MaxDate) {
			opts.MaxDate = day
		}
	}

	opts.Cities = sortedKeys(cities)
	opts.Products = sortedKeys(products)
	opts.PaymentMethods = sortedKeys(payments)
	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Stats reports dataset shape for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	months := make(map[string]struct{})
	for _, order := range a.dataset {
		months[order.MonthKey] = struct{}{}
	}

	return map[string]any{
		"record_count":    len(a.dataset),
		"loaded_at":       a.loadedAt,
		"cities":          len(a.options.Cities),
		"products":        len(a.options.Products),
		"payment_methods": len(a.options.PaymentMethods),
		"months":          len(months),
		"min_date":        a.options.MinDate.Format(models.DateLayout),
		"max_date":        a.options.MaxDate.Format(models.DateLayout),
	}
}
