package services

import (
	"slices"
	"strings"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregations are pure functions of the filtered view. Results are
// freshly allocated and deterministically ordered: count or revenue
// descending, name ascending on ties. An empty view yields an empty slice.

func CountByCity(view []models.Order) []models.CityCount {
	groups := make(map[string]int)
	for _, order := range view {
		groups[order.City]++
	}

	result := make([]models.CityCount, 0, len(groups))
	for city, orders := range groups {
		result = append(result, models.CityCount{City: city, Orders: orders})
	}
	slices.SortFunc(result, func(a, b models.CityCount) int {
		if a.Orders != b.Orders {
			return b.Orders - a.Orders
		}
		return strings.Compare(a.City, b.City)
	})
	return result
}

func CountByProduct(view []models.Order) []models.ProductCount {
	groups := make(map[string]int)
	for _, order := range view {
		groups[order.Product]++
	}

	result := make([]models.ProductCount, 0, len(groups))
	for product, orders := range groups {
		result = append(result, models.ProductCount{Product: product, Orders: orders})
	}
	slices.SortFunc(result, func(a, b models.ProductCount) int {
		if a.Orders != b.Orders {
			return b.Orders - a.Orders
		}
		return strings.Compare(a.Product, b.Product)
	})
	return result
}

func CountByPayment(view []models.Order) []models.PaymentCount {
	groups := make(map[string]int)
	for _, order := range view {
		groups[order.PaymentMethod]++
	}

	result := make([]models.PaymentCount, 0, len(groups))
	for method, orders := range groups {
		result = append(result, models.PaymentCount{PaymentMethod: method, Orders: orders})
	}
	slices.SortFunc(result, func(a, b models.PaymentCount) int {
		if a.Orders != b.Orders {
			return b.Orders - a.Orders
		}
		return strings.Compare(a.PaymentMethod, b.PaymentMethod)
	})
	return result
}

func RevenueByPayment(view []models.Order) []models.PaymentRevenue {
	groups := make(map[string]decimal.Decimal)
	for _, order := range view {
		groups[order.PaymentMethod] = groups[order.PaymentMethod].Add(order.Revenue())
	}

	result := make([]models.PaymentRevenue, 0, len(groups))
	for method, revenue := range groups {
		result = append(result, models.PaymentRevenue{PaymentMethod: method, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.PaymentRevenue) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.PaymentMethod, b.PaymentMethod)
	})
	return result
}

// TopCustomers ranks customers by summed revenue, descending, truncated to
// limit. A negative limit disables truncation.
func TopCustomers(view []models.Order, limit int) []models.CustomerRevenue {
	groups := make(map[string]decimal.Decimal)
	for _, order := range view {
		groups[order.CustomerName] = groups[order.CustomerName].Add(order.Revenue())
	}

	result := make([]models.CustomerRevenue, 0, len(groups))
	for customer, revenue := range groups {
		result = append(result, models.CustomerRevenue{CustomerName: customer, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.CustomerRevenue) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.CustomerName, b.CustomerName)
	})

	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// RevenueOverTime sums revenue into time buckets and returns them sorted
// ascending by period start. Buckets with no orders are absent, not
// zero-filled.
func RevenueOverTime(view []models.Order, g models.Granularity) []models.RevenuePoint {
	groups := make(map[time.Time]decimal.Decimal)
	for _, order := range view {
		bucket := g.BucketOf(order.OrderDate)
		groups[bucket] = groups[bucket].Add(order.Revenue())
	}

	result := make([]models.RevenuePoint, 0, len(groups))
	for period, revenue := range groups {
		result = append(result, models.RevenuePoint{Period: period, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.RevenuePoint) int {
		return a.Period.Compare(b.Period)
	})
	return result
}

// OrderPoints projects the view onto the quantity/price scatter. The limit
// caps the payload handed to the browser; a negative limit sends everything.
func OrderPoints(view []models.Order, limit int) []models.OrderPoint {
	n := len(view)
	if limit >= 0 && n > limit {
		n = limit
	}

	result := make([]models.OrderPoint, 0, n)
	for _, order := range view[:n] {
		result = append(result, models.OrderPoint{
			Quantity:      order.Quantity,
			UnitPrice:     order.UnitPrice.InexactFloat64(),
			Revenue:       order.Revenue().InexactFloat64(),
			Product:       order.Product,
			CustomerName:  order.CustomerName,
			City:          order.City,
			PaymentMethod: order.PaymentMethod,
		})
	}
	return result
}
