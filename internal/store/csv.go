package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 5000
	maxWorkers   = 8
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

var dateLayouts = []string{"2006-01-02 15:04:05", models.DateLayout}

// CSVSource parses orders from a header-addressed CSV file. Fields are
// looked up by column name, so column order does not matter and extra
// columns (including an unnamed leading index column) are ignored.
type CSVSource struct {
	path     string
	cacheDir string
	logger   *slog.Logger
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{
		path:     path,
		cacheDir: cacheDir,
		logger:   slog.Default(),
	}
}

func (s *CSVSource) Load(ctx context.Context) ([]models.Order, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat csv: %w", err)
	}

	if cached, err := s.loadFromCache(); err == nil && info.ModTime().Before(cached.CachedAt) {
		s.logger.Info("loaded dataset from cache", "records", len(cached.Orders))
		return cached.Orders, nil
	}

	start := time.Now()
	s.logger.Info("parsing csv file", "path", s.path)

	orders, err := s.parse(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	if err := s.saveToCache(orders); err != nil {
		s.logger.Warn("failed to save dataset cache", "error", err)
	}

	duration := time.Since(start)
	s.logger.Info("csv parsing complete",
		"records", len(orders),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(orders))/duration.Seconds()))

	return orders, nil
}

func (s *CSVSource) parse(ctx context.Context) ([]models.Order, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1024*1024)) // 1MB buffer

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	// Parse in batches; workers write disjoint indices, so no locking.
	orders := make([]models.Order, len(rows))
	for base := 0; base < len(rows); base += batchSize {
		end := min(base+batchSize, len(rows))
		if err := parseBatch(ctx, rows[base:end], base, cols, orders); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func parseBatch(ctx context.Context, rows [][]string, base int, cols columnIndex, out []models.Order) error {
	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, record := range rows {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			order, err := parseOrder(record, cols)
			if err != nil {
				// +2: 1-based line numbers plus the header line
				return fmt.Errorf("line %d: %w", base+i+2, err)
			}
			out[base+i] = order
			return nil
		})
	}

	return wg.Wait()
}

type columnIndex struct {
	date, city, product, payment, customer, quantity, price int
}

func mapColumns(header []string) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.TrimSpace(name)] = i
	}

	var missing []string
	idx := func(name string) int {
		i, ok := byName[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	cols := columnIndex{
		date:     idx("order_date"),
		city:     idx("city"),
		product:  idx("product"),
		payment:  idx("payment_method"),
		customer: idx("customer_name"),
		quantity: idx("quantity"),
		price:    idx("price"),
	}

	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseOrder(record []string, cols columnIndex) (models.Order, error) {
	date, err := parseDate(strings.TrimSpace(record[cols.date]))
	if err != nil {
		return models.Order{}, fmt.Errorf("order_date: %w", err)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(record[cols.quantity]))
	if err != nil {
		return models.Order{}, fmt.Errorf("quantity: %w", err)
	}
	if quantity < 0 {
		return models.Order{}, fmt.Errorf("quantity is negative: %d", quantity)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[cols.price]))
	if err != nil {
		return models.Order{}, fmt.Errorf("price: %w", err)
	}
	if price.IsNegative() {
		return models.Order{}, fmt.Errorf("price is negative: %s", price)
	}

	return models.Order{
		OrderDate:     date,
		City:          strings.TrimSpace(record[cols.city]),
		Product:       strings.TrimSpace(record[cols.product]),
		PaymentMethod: strings.TrimSpace(record[cols.payment]),
		CustomerName:  strings.TrimSpace(record[cols.customer]),
		Quantity:      quantity,
		UnitPrice:     price,
		MonthKey:      date.Format(models.MonthKeyLayout),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// Cache management

type datasetCache struct {
	Orders   []models.Order
	CachedAt time.Time
}

func (s *CSVSource) cacheFilename() string {
	return fmt.Sprintf("%s/%s_%s.gob", s.cacheDir, strings.ReplaceAll(s.path, "/", "_"), cacheVersion)
}

func (s *CSVSource) saveToCache(orders []models.Order) error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(s.cacheFilename())
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(datasetCache{Orders: orders, CachedAt: time.Now()})
}

func (s *CSVSource) loadFromCache() (*datasetCache, error) {
	file, err := os.Open(s.cacheFilename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cache datasetCache
	if err := gob.NewDecoder(file).Decode(&cache); err != nil {
		return nil, err
	}
	return &cache, nil
}
