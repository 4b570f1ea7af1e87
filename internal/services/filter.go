package services

import (
	"sales-dashboard/internal/models"
)

// ApplyFilters returns the orders matching every criteria dimension at
// once: inclusive calendar-date range AND city AND product AND payment
// method. It never mutates the dataset and never errors; an empty
// selection on any dimension or a reversed date range simply matches
// nothing.
func ApplyFilters(dataset []models.Order, c models.Criteria) []models.Order {
	if len(c.Cities) == 0 || len(c.Products) == 0 || len(c.PaymentMethods) == 0 {
		return nil
	}

	hasStart, hasEnd := !c.Start.IsZero(), !c.End.IsZero()
	start := models.Daily.BucketOf(c.Start)
	end := models.Daily.BucketOf(c.End)
	if hasStart && hasEnd && start.After(end) {
		return nil
	}

	cities := toSet(c.Cities)
	products := toSet(c.Products)
	payments := toSet(c.PaymentMethods)

	var matched []models.Order
	for _, order := range dataset {
		day := models.Daily.BucketOf(order.OrderDate)
		if hasStart && day.Before(start) {
			continue
		}
		if hasEnd && day.After(end) {
			continue
		}
		if _, ok := cities[order.City]; !ok {
			continue
		}
		if _, ok := products[order.Product]; !ok {
			continue
		}
		if _, ok := payments[order.PaymentMethod]; !ok {
			continue
		}
		matched = append(matched, order)
	}
	return matched
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
