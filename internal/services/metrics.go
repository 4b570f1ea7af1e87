package services

import (
	"sales-dashboard/internal/models"
)

// Summarize computes the scalar metrics row in a single pass over the
// filtered view. An empty view yields zero values, never an error.
func Summarize(view []models.Order) models.Summary {
	var summary models.Summary
	customers := make(map[string]struct{}, len(view))

	for _, order := range view {
		summary.TotalQuantity += order.Quantity
		summary.TotalRevenue = summary.TotalRevenue.Add(order.Revenue())
		customers[order.CustomerName] = struct{}{}
	}

	summary.OrderCount = len(view)
	summary.UniqueCustomers = len(customers)
	return summary
}
