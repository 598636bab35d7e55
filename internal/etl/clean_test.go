package etl

import (
	"testing"
	"time"

	"github.com/cityretail/cityretail-etl/internal/model"
)

func TestStandardizeCityNames(t *testing.T) {
	stores := []model.RawStore{
		{StoreID: 1, StoreName: "Downtown", Region: "Northeast", City: "NYC"},
		{StoreID: 2, StoreName: "Harbor", Region: "West", City: "LA"},
		{StoreID: 3, StoreName: "Uptown", Region: "Midwest", City: "Springfield"},
	}
	lookup := []model.CityMapping{
		{RawCity: "NYC", StandardCity: "New York"},
		{RawCity: "LA", StandardCity: "Los Angeles"},
	}

	cleaned := StandardizeCityNames(stores, lookup)

	if len(cleaned) != len(stores) {
		t.Fatalf("Row count changed: got %d, want %d", len(cleaned), len(stores))
	}

	if cleaned[0].City == nil || *cleaned[0].City != "New York" {
		t.Errorf("Store 1 city = %v, want New York", cleaned[0].City)
	}
	if cleaned[1].City == nil || *cleaned[1].City != "Los Angeles" {
		t.Errorf("Store 2 city = %v, want Los Angeles", cleaned[1].City)
	}
	if cleaned[2].City != nil {
		t.Errorf("Store 3 city = %v, want nil for unmapped", *cleaned[2].City)
	}

	// Non-city fields pass through untouched.
	if cleaned[2].StoreID != 3 || cleaned[2].StoreName != "Uptown" || cleaned[2].Region != "Midwest" {
		t.Errorf("Store 3 fields changed: %+v", cleaned[2])
	}
}

func TestStandardizeCityNamesEmptyLookup(t *testing.T) {
	stores := []model.RawStore{
		{StoreID: 1, StoreName: "Downtown", Region: "Northeast", City: "NYC"},
	}

	cleaned := StandardizeCityNames(stores, nil)

	if len(cleaned) != 1 {
		t.Fatalf("Row count changed: got %d, want 1", len(cleaned))
	}
	if cleaned[0].City != nil {
		t.Errorf("Expected nil city, got %v", *cleaned[0].City)
	}
}

func TestParseCalendarDates(t *testing.T) {
	calendar := []model.RawCalendar{
		{DateID: 20240106, Date: "2024-01-06"}, // Saturday
		{DateID: 20240107, Date: "2024/01/07"}, // Sunday
		{DateID: 20240108, Date: "2024-01-08"}, // Monday
		{DateID: 20240109, Date: "not a date"},
	}

	cleaned := ParseCalendarDates(calendar)

	if len(cleaned) != len(calendar) {
		t.Fatalf("Row count changed: got %d, want %d", len(cleaned), len(calendar))
	}

	sat := cleaned[0]
	if sat.Date == nil || sat.WeekNumber == nil || sat.IsWeekend == nil {
		t.Fatal("Saturday row has nil derived fields")
	}
	if !*sat.IsWeekend {
		t.Error("Saturday should be a weekend")
	}
	if *sat.WeekNumber != 1 {
		t.Errorf("2024-01-06 ISO week = %d, want 1", *sat.WeekNumber)
	}

	sun := cleaned[1]
	if sun.IsWeekend == nil || !*sun.IsWeekend {
		t.Error("Sunday should be a weekend")
	}

	mon := cleaned[2]
	if mon.IsWeekend == nil || *mon.IsWeekend {
		t.Error("Monday should not be a weekend")
	}
	if mon.WeekNumber == nil || *mon.WeekNumber != 2 {
		t.Errorf("2024-01-08 ISO week = %v, want 2", mon.WeekNumber)
	}

	// Unparsable date coerces every derived field to nil.
	bad := cleaned[3]
	if bad.Date != nil || bad.WeekNumber != nil || bad.IsWeekend != nil {
		t.Errorf("Unparsable row should have nil date, week and weekend: %+v", bad)
	}
	if bad.DateID != 20240109 {
		t.Errorf("Unparsable row key changed: %d", bad.DateID)
	}
}

func TestParseCalendarDatesWeekBounds(t *testing.T) {
	// A full year of dates stays within the ISO week range.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var calendar []model.RawCalendar
	for i := 0; i < 366; i++ {
		d := start.AddDate(0, 0, i)
		calendar = append(calendar, model.RawCalendar{
			DateID: int64(i + 1),
			Date:   d.Format(model.DateLayout),
		})
	}

	for _, row := range ParseCalendarDates(calendar) {
		if row.WeekNumber == nil {
			t.Fatalf("Row %d has nil week number", row.DateID)
		}
		if *row.WeekNumber < 1 || *row.WeekNumber > 53 {
			t.Errorf("Week number %d out of range for dateid %d", *row.WeekNumber, row.DateID)
		}
	}
}

func TestCoerceSales(t *testing.T) {
	sales := []model.RawSale{
		{SalesID: 1, DateID: "20240115", ProductID: 10, StoreID: 2, Quantity: 3, Revenue: 42.5},
		{SalesID: 2, DateID: "20240116.0", ProductID: 11, StoreID: 2, Quantity: 1, Revenue: 9.99},
	}

	cleaned, err := CoerceSales(sales)
	if err != nil {
		t.Fatalf("CoerceSales failed: %v", err)
	}

	if cleaned[0].DateID != 20240115 {
		t.Errorf("DateID mismatch: %d", cleaned[0].DateID)
	}
	if cleaned[1].DateID != 20240116 {
		t.Errorf("Float DateID mismatch: %d", cleaned[1].DateID)
	}
}

func TestCoerceSalesBadDateID(t *testing.T) {
	sales := []model.RawSale{
		{SalesID: 1, DateID: "mid-january", ProductID: 10, StoreID: 2},
	}

	if _, err := CoerceSales(sales); err == nil {
		t.Error("Expected error for non-numeric dateid")
	}
}
