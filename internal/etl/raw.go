//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package etl implements the CityRetail extract, transform and load
// pipeline: raw CSV loading, cleaning transforms, cleaned snapshot
// persistence and the warehouse load/reconciliation engine.
package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/model"
)

// RawTables holds the raw extracts for one run. A table that failed to
// load is nil; downstream stages that require it return an error then.
type RawTables struct {
	Products []model.Product
	Stores   []model.RawStore
	Calendar []model.RawCalendar
	Sales    []model.RawSale
	Cities   []model.CityMapping
}

// LoadRawTables reads the fixed set of raw CSV extracts from dir.
// Per-file failures (missing file, unparsable CSV) are logged and leave
// that table absent; they never abort the whole batch.
func LoadRawTables(dir string) *RawTables {
	raw := &RawTables{}

	raw.Products = loadRawTable[model.Product](dir, "products.csv")
	raw.Stores = loadRawTable[model.RawStore](dir, "stores.csv")
	raw.Calendar = loadRawTable[model.RawCalendar](dir, "calendar.csv")
	raw.Sales = loadRawTable[model.RawSale](dir, "sales.csv")
	raw.Cities = loadRawTable[model.CityMapping](dir, "cities_lookup.csv")

	return raw
}

// Require returns an error when any named raw table failed to load.
// Stages that need a table call this instead of guessing at nil slices.
func (r *RawTables) Require(names ...string) error {
	loaded := map[string]bool{
		"products":      r.Products != nil,
		"stores":        r.Stores != nil,
		"calendar":      r.Calendar != nil,
		"sales":         r.Sales != nil,
		"cities_lookup": r.Cities != nil,
	}
	for _, name := range names {
		ok, known := loaded[name]
		if !known {
			return fmt.Errorf("unknown raw table %q", name)
		}
		if !ok {
			return fmt.Errorf("raw table %q was not loaded", name)
		}
	}
	return nil
}

func loadRawTable[T any](dir, filename string) []T {
	path := filepath.Join(dir, filename)
	rows, err := ReadCSV[T](path)
	if err != nil {
		logging.Error().Err(err).Str("file", filename).Msg("Failed to load raw table")
		return nil
	}
	logging.Info().Str("file", filename).Int("rows", len(rows)).Msg("Loaded raw table")
	return rows
}

// ReadCSV decodes a CSV file into typed records. Header names are
// normalized to lowercase before matching, so ProductID and productid
// are the same column.
func ReadCSV[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s is empty", filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", filepath.Base(path), err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	dec, err := csvutil.NewDecoder(r, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for %s: %w", filepath.Base(path), err)
	}

	rows := []T{}
	for {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
