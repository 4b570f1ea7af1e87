package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order is one row of the loaded sales dataset. The dataset is immutable
// after load; downstream stages work on copies of the slice header only.
type Order struct {
	OrderDate     time.Time
	City          string
	Product       string
	PaymentMethod string
	CustomerName  string
	Quantity      int
	UnitPrice     decimal.Decimal
	MonthKey      string
}

// Revenue is always derived from quantity and unit price, never stored.
func (o Order) Revenue() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

type Summary struct {
	TotalQuantity   int             `json:"total_quantity"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	OrderCount      int             `json:"order_count"`
	UniqueCustomers int             `json:"unique_customers"`
}

type CityCount struct {
	City   string `json:"city"`
	Orders int    `json:"orders"`
}

type ProductCount struct {
	Product string `json:"product"`
	Orders  int    `json:"orders"`
}

type PaymentCount struct {
	PaymentMethod string `json:"payment_method"`
	Orders        int    `json:"orders"`
}

type PaymentRevenue struct {
	PaymentMethod string          `json:"payment_method"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type CustomerRevenue struct {
	CustomerName string          `json:"customer_name"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type RevenuePoint struct {
	Period  time.Time       `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MarshalJSON writes the period as its bucket-start calendar date rather
// than a full timestamp.
func (p RevenuePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Period  string          `json:"period"`
		Revenue decimal.Decimal `json:"revenue"`
	}{
		Period:  p.Period.Format(DateLayout),
		Revenue: p.Revenue,
	})
}

// OrderPoint feeds the quantity/price scatter chart. Revenue sizes the
// marker, the rest is hover text.
type OrderPoint struct {
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	Revenue       float64 `json:"revenue"`
	Product       string  `json:"product"`
	CustomerName  string  `json:"customer_name"`
	City          string  `json:"city"`
	PaymentMethod string  `json:"payment_method"`
}

// FilterOptions holds the selectable universes, derived from the full
// dataset once at load time. Slices are sorted ascending.
type FilterOptions struct {
	Cities         []string  `json:"cities"`
	Products       []string  `json:"products"`
	PaymentMethods []string  `json:"payment_methods"`
	MinDate        time.Time `json:"min_date"`
	MaxDate        time.Time `json:"max_date"`
}

// ViewModel is the complete render payload for one pipeline run.
type ViewModel struct {
	Summary          Summary           `json:"summary"`
	OrdersByCity     []CityCount       `json:"orders_by_city"`
	OrdersByProduct  []ProductCount    `json:"orders_by_product"`
	OrdersByPayment  []PaymentCount    `json:"orders_by_payment"`
	RevenueByPayment []PaymentRevenue  `json:"revenue_by_payment"`
	TopCustomers     []CustomerRevenue `json:"top_customers"`
	RevenueOverTime  []RevenuePoint    `json:"revenue_over_time"`
	OrderPoints      []OrderPoint      `json:"order_points"`
}
