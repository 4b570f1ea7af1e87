package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"sales-dashboard/internal/models"

	"github.com/a-h/templ"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/plotly.js-dist-min@2.35.2/plotly.min.js"></script>
<style>
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, sans-serif; background: #f5f6f8; color: #1f2933; }
header { padding: 16px 24px; background: #1f2933; color: #fff; }
header h1 { margin: 0; font-size: 20px; }
.layout { display: flex; gap: 16px; padding: 16px; align-items: flex-start; }
.sidebar { width: 280px; flex-shrink: 0; background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
.sidebar h2 { margin: 0 0 12px; font-size: 15px; }
.filter-group { border: 1px solid #e0e4e8; border-radius: 6px; margin: 0 0 12px; padding: 8px 10px; max-height: 180px; overflow-y: auto; }
.filter-group legend { font-size: 13px; font-weight: 600; padding: 0 4px; }
.filter-group label { display: block; font-size: 13px; padding: 2px 0; }
.date-range label { display: block; font-size: 13px; margin-bottom: 8px; }
.date-range input { width: 100%; margin-top: 2px; }
.reset-btn { width: 100%; padding: 8px; border: 0; border-radius: 6px; background: #4c78a8; color: #fff; cursor: pointer; }
main { flex: 1; min-width: 0; }
.metrics-row { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin-bottom: 16px; }
.metric-card { background: #fff; border-radius: 8px; padding: 14px 16px; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
.metric-label { font-size: 12px; text-transform: uppercase; color: #6b7280; }
.metric-value { font-size: 22px; font-weight: 700; margin-top: 4px; }
.chart-grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 12px; }
.chart-panel { background: #fff; border-radius: 8px; min-height: 320px; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
#top-customers { background: #fff; border-radius: 8px; padding: 16px; margin-top: 12px; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
#top-customers h3 { margin: 0 0 8px; font-size: 15px; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 14px; }
.modern-table th { text-align: left; padding: 6px 8px; border-bottom: 2px solid #e0e4e8; }
.modern-table td { padding: 6px 8px; border-bottom: 1px solid #eef1f4; }
</style>
</head>
`

const chartScript = `<script>
window.renderCharts = function(charts) {
	if (!charts || !charts.city) return;
	var layout = {margin: {t: 40, l: 48, r: 16, b: 56}};
	Plotly.react('chart-city',
		[{type: 'bar', x: charts.city.labels, y: charts.city.values, marker: {color: '#4c78a8'}}],
		Object.assign({title: {text: 'Orders by city'}}, layout));
	Plotly.react('chart-product',
		[{type: 'bar', x: charts.product.labels, y: charts.product.values, marker: {color: '#72b7b2'}}],
		Object.assign({title: {text: 'Orders by product'}}, layout));
	Plotly.react('chart-payment-count',
		[{type: 'pie', labels: charts.paymentCount.labels, values: charts.paymentCount.values}],
		Object.assign({title: {text: 'Orders by payment method'}}, layout));
	Plotly.react('chart-payment-revenue',
		[{type: 'bar', x: charts.paymentRevenue.labels, y: charts.paymentRevenue.values, marker: {color: '#e45756'}}],
		Object.assign({title: {text: 'Revenue by payment method'}}, layout));
	Plotly.react('chart-revenue',
		[{type: 'scatter', mode: 'lines+markers', x: charts.revenue.labels, y: charts.revenue.values, line: {color: '#54a24b'}}],
		Object.assign({title: {text: 'Revenue over time'}}, layout));
	var sizes = charts.scatter.size.map(function(s) { return Math.max(6, Math.sqrt(s)); });
	Plotly.react('chart-scatter',
		[{type: 'scatter', mode: 'markers', x: charts.scatter.x, y: charts.scatter.y,
		  text: charts.scatter.text, marker: {size: sizes, opacity: 0.6, color: '#b279a2'}}],
		Object.assign({title: {text: 'Quantity vs unit price'},
		  xaxis: {title: {text: 'Quantity'}}, yaxis: {title: {text: 'Unit price'}}}, layout));
};
</script>
`

var granularityChoices = []struct {
	Value models.Granularity
	Label string
}{
	{models.Daily, "Daily"},
	{models.Monthly, "Monthly"},
	{models.Quarterly, "Quarterly"},
}

// Dashboard renders the full page: filter sidebar seeded with the dataset's
// option universes, the metrics row, chart panels and the top-customers
// table. The page holds its filter state in datastar signals and reloads
// every view through /sse/dashboard.
func Dashboard(opts models.FilterOptions, defaults models.Criteria) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := initialSignals(defaults)
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w,
			"<body data-signals='%s' data-on-load=\"@get('/sse/dashboard')\">\n",
			templ.EscapeString(signals)); err != nil {
			return err
		}

		if _, err := io.WriteString(w,
			"<header><h1>Sales Dashboard</h1></header>\n<div class=\"layout\">\n"); err != nil {
			return err
		}

		if err := writeSidebar(w, opts, defaults); err != nil {
			return err
		}

		if err := writeMain(w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}

		// Redraw charts whenever the charts signal is patched.
		if _, err := io.WriteString(w,
			`<div data-effect="renderCharts($charts)"></div>`+"\n"+chartScript); err != nil {
			return err
		}

		_, err = io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

func initialSignals(defaults models.Criteria) (string, error) {
	signals, err := json.Marshal(map[string]any{
		"filters": map[string]any{
			"start":       defaults.Start.Format(models.DateLayout),
			"end":         defaults.End.Format(models.DateLayout),
			"cities":      defaults.Cities,
			"products":    defaults.Products,
			"payments":    defaults.PaymentMethods,
			"granularity": string(defaults.Granularity),
		},
		"charts": map[string]any{},
	})
	if err != nil {
		return "", fmt.Errorf("marshal initial signals: %w", err)
	}
	return string(signals), nil
}

func writeSidebar(w io.Writer, opts models.FilterOptions, defaults models.Criteria) error {
	if _, err := io.WriteString(w, "<aside class=\"sidebar\">\n<h2>Filters</h2>\n"); err != nil {
		return err
	}

	minDate := opts.MinDate.Format(models.DateLayout)
	maxDate := opts.MaxDate.Format(models.DateLayout)
	if _, err := fmt.Fprintf(w, `<div class="date-range">
<label>From <input type="date" data-bind="filters.start" data-on-change="@get('/sse/dashboard')" min="%s" max="%s"></label>
<label>To <input type="date" data-bind="filters.end" data-on-change="@get('/sse/dashboard')" min="%s" max="%s"></label>
</div>
`, minDate, maxDate, minDate, maxDate); err != nil {
		return err
	}

	if _, err := io.WriteString(w, `<fieldset class="filter-group"><legend>Granularity</legend>`+"\n"); err != nil {
		return err
	}
	for _, choice := range granularityChoices {
		checked := ""
		if choice.Value == defaults.Granularity {
			checked = " checked"
		}
		if _, err := fmt.Fprintf(w,
			"<label><input type=\"radio\" name=\"granularity\" value=\"%s\" data-bind=\"filters.granularity\" data-on-change=\"@get('/sse/dashboard')\"%s> %s</label>\n",
			choice.Value, checked, choice.Label); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</fieldset>\n"); err != nil {
		return err
	}

	if err := writeCheckboxGroup(w, "Cities", "filters.cities", opts.Cities); err != nil {
		return err
	}
	if err := writeCheckboxGroup(w, "Products", "filters.products", opts.Products); err != nil {
		return err
	}
	if err := writeCheckboxGroup(w, "Payment methods", "filters.payments", opts.PaymentMethods); err != nil {
		return err
	}

	_, err := io.WriteString(w,
		"<button class=\"reset-btn\" data-on-click=\"@get('/sse/reset-filters')\">Reset filters</button>\n</aside>\n")
	return err
}

func writeCheckboxGroup(w io.Writer, legend, signal string, options []string) error {
	if _, err := fmt.Fprintf(w, "<fieldset class=\"filter-group\"><legend>%s</legend>\n",
		templ.EscapeString(legend)); err != nil {
		return err
	}
	for _, option := range options {
		escaped := templ.EscapeString(option)
		if _, err := fmt.Fprintf(w,
			"<label><input type=\"checkbox\" value=\"%s\" data-bind=\"%s\" data-on-change=\"@get('/sse/dashboard')\" checked> %s</label>\n",
			escaped, signal, escaped); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</fieldset>\n")
	return err
}

func writeMain(w io.Writer) error {
	_, err := io.WriteString(w, `<main>
<div id="metrics-row" class="metrics-row"></div>
<div class="chart-grid">
<div id="chart-city" class="chart-panel"></div>
<div id="chart-product" class="chart-panel"></div>
<div id="chart-payment-count" class="chart-panel"></div>
<div id="chart-payment-revenue" class="chart-panel"></div>
<div id="chart-revenue" class="chart-panel"></div>
<div id="chart-scatter" class="chart-panel"></div>
</div>
<div id="top-customers"></div>
</main>
`)
	return err
}
