//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the typed records flowing through the ETL
// pipeline. Raw types mirror the source CSV extracts; cleaned types
// mirror the warehouse tables and provide the Key/Values primitives
// shared by delta detection, snapshots and the warehouse loader.
package model

import (
	"fmt"
	"strconv"
)

// Row is a record destined for one warehouse table. Key is the primary
// key used for delta detection and upsert conflict resolution; Values
// returns every column value in the table's registered column order.
type Row interface {
	Key() int64
	Values() []any
}

// Product is a product dimension row. The raw extract needs no
// cleaning, so a single type serves both sides.
type Product struct {
	ProductID   int64   `csv:"productid"`
	ProductName string  `csv:"productname"`
	Category    string  `csv:"category"`
	UnitPrice   float64 `csv:"unitprice"`
}

func (p Product) Key() int64 { return p.ProductID }

func (p Product) Values() []any {
	return []any{p.ProductID, p.ProductName, p.Category, p.UnitPrice}
}

// RawStore is a store row as read from the raw extract. City holds the
// inconsistent source spelling.
type RawStore struct {
	StoreID   int64  `csv:"storeid"`
	StoreName string `csv:"storename"`
	Region    string `csv:"region"`
	City      string `csv:"city"`
}

// Store is a cleaned store dimension row. City is the standardized
// name, or nil when the source spelling had no lookup mapping.
type Store struct {
	StoreID   int64   `csv:"storeid"`
	StoreName string  `csv:"storename"`
	Region    string  `csv:"region"`
	City      *string `csv:"city"`
}

func (s Store) Key() int64 { return s.StoreID }

func (s Store) Values() []any {
	return []any{s.StoreID, s.StoreName, s.Region, s.City}
}

// CityMapping is one row of the city-name lookup table.
type CityMapping struct {
	RawCity      string `csv:"rawcity"`
	StandardCity string `csv:"standardcity"`
}

// RawCalendar is a calendar row as read from the raw extract, with the
// date still in its source string form.
type RawCalendar struct {
	DateID int64  `csv:"dateid"`
	Date   string `csv:"date"`
}

// Calendar is a cleaned date dimension row. Date, WeekNumber and
// IsWeekend are all nil when the source date failed to parse.
type Calendar struct {
	DateID     int64 `csv:"dateid"`
	Date       *Date `csv:"date"`
	WeekNumber *int  `csv:"weeknumber"`
	IsWeekend  *bool `csv:"isweekend"`
}

func (c Calendar) Key() int64 { return c.DateID }

func (c Calendar) Values() []any {
	var date any
	if c.Date != nil {
		date = c.Date.Time
	}
	return []any{c.DateID, date, c.WeekNumber, c.IsWeekend}
}

// RawSale is a sales row as read from the raw extract. DateID stays a
// string because source systems deliver it as an integer, a float or
// free text depending on the export.
type RawSale struct {
	SalesID   int64   `csv:"salesid"`
	DateID    string  `csv:"dateid"`
	ProductID int64   `csv:"productid"`
	StoreID   int64   `csv:"storeid"`
	Quantity  int64   `csv:"quantity"`
	Revenue   float64 `csv:"revenue"`
}

// Sale is a sales fact row with its date key coerced to an integer so
// key comparison and insert match the integer-typed warehouse column.
type Sale struct {
	SalesID   int64   `csv:"salesid"`
	DateID    int64   `csv:"dateid"`
	ProductID int64   `csv:"productid"`
	StoreID   int64   `csv:"storeid"`
	Quantity  int64   `csv:"quantity"`
	Revenue   float64 `csv:"revenue"`
}

func (s Sale) Key() int64 { return s.SalesID }

func (s Sale) Values() []any {
	return []any{s.SalesID, s.DateID, s.ProductID, s.StoreID, s.Quantity, s.Revenue}
}

// CoerceDateID converts a raw date key to its integer representation.
// Floating-point exports ("20240115.0") are truncated.
func CoerceDateID(raw string) (int64, error) {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("dateid %q is not numeric", raw)
	}
	return int64(f), nil
}
