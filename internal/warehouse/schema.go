//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TableSpec describes one warehouse table: its name, the primary key
// column used for delta detection and upsert conflict resolution, and
// the full column list in insert order (key first).
type TableSpec struct {
	Name    string
	Key     string
	Columns []string
}

// The star schema registry. Dimension tables carry descriptive
// attributes; factsales references them by key.
var (
	DimProduct = TableSpec{
		Name:    "dimproduct",
		Key:     "productid",
		Columns: []string{"productid", "productname", "category", "unitprice"},
	}

	DimStore = TableSpec{
		Name:    "dimstore",
		Key:     "storeid",
		Columns: []string{"storeid", "storename", "region", "city"},
	}

	DimDate = TableSpec{
		Name:    "dimdate",
		Key:     "dateid",
		Columns: []string{"dateid", "date", "weeknumber", "isweekend"},
	}

	FactSales = TableSpec{
		Name:    "factsales",
		Key:     "salesid",
		Columns: []string{"salesid", "dateid", "productid", "storeid", "quantity", "revenue"},
	}
)

// Tables returns all warehouse tables in referential load order: the
// fact table is always last so its dimension keys exist before insert.
func Tables() []TableSpec {
	return []TableSpec{DimProduct, DimStore, DimDate, FactSales}
}

// Lookup returns the spec for a registered table name.
func Lookup(name string) (TableSpec, error) {
	for _, spec := range Tables() {
		if spec.Name == name {
			return spec, nil
		}
	}
	return TableSpec{}, fmt.Errorf("unknown warehouse table: %s", name)
}

// Schema SQL for the CityRetail star schema.
const createSchemaSQL = `
-- Product Dimension
CREATE TABLE IF NOT EXISTS dimproduct (
    productid   BIGINT PRIMARY KEY,
    productname VARCHAR(100) NOT NULL,
    category    VARCHAR(50),
    unitprice   NUMERIC(9,2)
);

-- Store Dimension
CREATE TABLE IF NOT EXISTS dimstore (
    storeid   BIGINT PRIMARY KEY,
    storename VARCHAR(100) NOT NULL,
    region    VARCHAR(50),
    city      VARCHAR(60)
);

-- Date Dimension
CREATE TABLE IF NOT EXISTS dimdate (
    dateid     BIGINT PRIMARY KEY,
    date       DATE,
    weeknumber INTEGER,
    isweekend  BOOLEAN
);

-- Sales Fact
CREATE TABLE IF NOT EXISTS factsales (
    salesid   BIGINT PRIMARY KEY,
    dateid    BIGINT REFERENCES dimdate(dateid),
    productid BIGINT REFERENCES dimproduct(productid),
    storeid   BIGINT REFERENCES dimstore(storeid),
    quantity  INTEGER,
    revenue   NUMERIC(12,2)
);

CREATE INDEX IF NOT EXISTS idx_factsales_date ON factsales(dateid);
CREATE INDEX IF NOT EXISTS idx_factsales_product ON factsales(productid);
CREATE INDEX IF NOT EXISTS idx_factsales_store ON factsales(storeid);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS factsales CASCADE;
DROP TABLE IF EXISTS dimdate CASCADE;
DROP TABLE IF EXISTS dimstore CASCADE;
DROP TABLE IF EXISTS dimproduct CASCADE;
`

// CreateSchema creates the warehouse star schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the warehouse star schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
