package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/model"
)

// SeedConfig controls how much demo data the seed command writes.
type SeedConfig struct {
	Products int
	Stores   int
	Days     int
	Sales    int

	// Seed makes generation reproducible when non-zero.
	Seed uint64
}

// DefaultSeedConfig returns a small but representative dataset.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Products: 200,
		Stores:   25,
		Days:     365,
		Sales:    5000,
	}
}

// cityVariants maps the inconsistent spellings that appear in store
// extracts to their standardized names; it seeds cities_lookup.csv.
var cityVariants = map[string]string{
	"NYC":         "New York",
	"N.Y.C":       "New York",
	"new york":    "New York",
	"LA":          "Los Angeles",
	"L.A.":        "Los Angeles",
	"Chig":        "Chicago",
	"chicago":     "Chicago",
	"SF":          "San Francisco",
	"Hstn":        "Houston",
	"Philly":      "Philadelphia",
	"sea-tac":     "Seattle",
	"Bstn":        "Boston",
	"atl":         "Atlanta",
	"Mia.":        "Miami",
	"dallas tx":   "Dallas",
	"Dnvr":        "Denver",
	"portland or": "Portland",
}

var regions = []string{"Northeast", "Southeast", "Midwest", "Southwest", "West"}

// WriteRawExtracts writes the five raw CSV extracts into dir. A small
// share of stores gets a city that has no lookup mapping, and a small
// share of sales carries a float-formatted date key, so a seeded run
// exercises the data-quality paths.
func WriteRawExtracts(dir string, cfg SeedConfig) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create raw dir: %w", err)
	}

	faker := NewFaker()
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	}

	variants := make([]string, 0, len(cityVariants))
	lookup := make([]model.CityMapping, 0, len(cityVariants))
	for raw, std := range cityVariants {
		variants = append(variants, raw)
		lookup = append(lookup, model.CityMapping{RawCity: raw, StandardCity: std})
	}

	products := make([]model.Product, cfg.Products)
	for i := range products {
		products[i] = model.Product{
			ProductID:   int64(i + 1),
			ProductName: faker.ProductName(),
			Category:    faker.ProductCategory(),
			UnitPrice:   faker.Price(1, 500),
		}
	}

	stores := make([]model.RawStore, cfg.Stores)
	for i := range stores {
		city := Element(faker, variants)
		if faker.Bool(0.1) {
			// No lookup mapping for this one.
			city = faker.City()
		}
		stores[i] = model.RawStore{
			StoreID:   int64(i + 1),
			StoreName: faker.Company(),
			Region:    Element(faker, regions),
			City:      city,
		}
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calendar := make([]model.RawCalendar, cfg.Days)
	dateIDs := make([]int64, cfg.Days)
	for i := range calendar {
		d := start.AddDate(0, 0, i)
		id := int64(d.Year()*10000 + int(d.Month())*100 + d.Day())
		dateIDs[i] = id
		calendar[i] = model.RawCalendar{
			DateID: id,
			Date:   d.Format(model.DateLayout),
		}
	}

	sales := make([]model.RawSale, cfg.Sales)
	for i := range sales {
		dateID := fmt.Sprintf("%d", Element(faker, dateIDs))
		if faker.Bool(0.05) {
			// Some exports deliver the date key as a float.
			dateID += ".0"
		}
		qty := int64(faker.IntRange(1, 20))
		price := faker.Price(1, 500)
		sales[i] = model.RawSale{
			SalesID:   int64(i + 1),
			DateID:    dateID,
			ProductID: int64(faker.IntRange(1, cfg.Products)),
			StoreID:   int64(faker.IntRange(1, cfg.Stores)),
			Quantity:  qty,
			Revenue:   float64(qty) * price,
		}
	}

	if err := writeCSV(dir, "products.csv", products); err != nil {
		return err
	}
	if err := writeCSV(dir, "stores.csv", stores); err != nil {
		return err
	}
	if err := writeCSV(dir, "calendar.csv", calendar); err != nil {
		return err
	}
	if err := writeCSV(dir, "sales.csv", sales); err != nil {
		return err
	}
	return writeCSV(dir, "cities_lookup.csv", lookup)
}

func writeCSV[T any](dir, filename string, rows []T) error {
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	logging.Info().Str("file", filename).Int("rows", len(rows)).Msg("Wrote raw extract")
	return nil
}
