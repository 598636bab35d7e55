package etl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cityretail/cityretail-etl/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestLoadRawTables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.csv", "productid,productname,category,unitprice\n1,Desk Lamp,Home,35.5\n")
	writeFile(t, dir, "stores.csv", "storeid,storename,region,city\n1,Downtown,Northeast,NYC\n")
	writeFile(t, dir, "calendar.csv", "dateid,date\n20240101,2024-01-01\n")
	writeFile(t, dir, "sales.csv", "salesid,dateid,productid,storeid,quantity,revenue\n1,20240101,1,1,2,71.0\n")
	writeFile(t, dir, "cities_lookup.csv", "rawcity,standardcity\nNYC,New York\n")

	raw := LoadRawTables(dir)

	if err := raw.Require("products", "stores", "calendar", "sales", "cities_lookup"); err != nil {
		t.Fatalf("Require failed: %v", err)
	}
	if len(raw.Products) != 1 || raw.Products[0].ProductName != "Desk Lamp" {
		t.Errorf("Products mismatch: %+v", raw.Products)
	}
	if len(raw.Sales) != 1 || raw.Sales[0].DateID != "20240101" {
		t.Errorf("Sales mismatch: %+v", raw.Sales)
	}
}

func TestLoadRawTablesCaseInsensitiveHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.csv", "ProductID,ProductName,Category,UnitPrice\n7,Armchair,Home,340\n")

	raw := LoadRawTables(dir)

	if raw.Products == nil {
		t.Fatal("Products failed to load with mixed-case headers")
	}
	if raw.Products[0].ProductID != 7 {
		t.Errorf("ProductID mismatch: %d", raw.Products[0].ProductID)
	}
}

func TestReadCSVStripsByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.csv",
		"\ufeffproductid,productname,category,unitprice\n1,Desk Lamp,Home,35.5\n")

	rows, err := ReadCSV[model.Product](filepath.Join(dir, "products.csv"))
	if err != nil {
		t.Fatalf("ReadCSV failed on BOM-prefixed file: %v", err)
	}
	if len(rows) != 1 || rows[0].ProductID != 1 {
		t.Errorf("BOM-prefixed header did not decode: %+v", rows)
	}
}

func TestLoadRawTablesMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.csv", "productid,productname,category,unitprice\n1,Desk Lamp,Home,35.5\n")

	// Everything else is missing; the batch still loads what it can.
	raw := LoadRawTables(dir)

	if raw.Products == nil {
		t.Error("Products should have loaded")
	}
	if raw.Sales != nil {
		t.Error("Sales should be absent")
	}
	if err := raw.Require("sales"); err == nil {
		t.Error("Require should fail for an absent table")
	}
	if err := raw.Require("products"); err != nil {
		t.Errorf("Require should pass for a loaded table: %v", err)
	}
}

func TestLoadRawTablesUnparsable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.csv", "productid,productname,category,unitprice\nnot-a-number,Desk Lamp,Home,35.5\n")

	raw := LoadRawTables(dir)

	if raw.Products != nil {
		t.Error("Unparsable table should be absent, not partially loaded")
	}
}

func TestRequireUnknownTable(t *testing.T) {
	raw := &RawTables{}
	if err := raw.Require("inventory"); err == nil {
		t.Error("Require should reject unknown table names")
	}
}
