package model

import (
	"testing"
	"time"
)

func TestCoerceDateID(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      int64
		wantError bool
	}{
		{"integer", "20240115", 20240115, false},
		{"float", "20240115.0", 20240115, false},
		{"float with fraction", "20240115.7", 20240115, false},
		{"negative integer", "-3", -3, false},
		{"text", "jan 15", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceDateID(tt.raw)
			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error for %q, got %d", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("CoerceDateID(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDateCSVRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 9, 15, 30, 0, 0, time.UTC))

	data, err := d.MarshalCSV()
	if err != nil {
		t.Fatalf("MarshalCSV failed: %v", err)
	}
	if string(data) != "2024-03-09" {
		t.Errorf("MarshalCSV = %q, want 2024-03-09", data)
	}

	var back Date
	if err := back.UnmarshalCSV(data); err != nil {
		t.Fatalf("UnmarshalCSV failed: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("Round trip mismatch: got %v, want %v", back.Time, d.Time)
	}
}

func TestDateUnmarshalInvalid(t *testing.T) {
	var d Date
	if err := d.UnmarshalCSV([]byte("not-a-date")); err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestCalendarValuesNullPropagation(t *testing.T) {
	c := Calendar{DateID: 20240101}

	values := c.Values()
	if len(values) != 4 {
		t.Fatalf("Expected 4 values, got %d", len(values))
	}
	if values[0] != int64(20240101) {
		t.Errorf("dateid mismatch: %v", values[0])
	}
	if values[1] != nil {
		t.Errorf("Expected nil date, got %v", values[1])
	}
}

func TestRowKeys(t *testing.T) {
	city := "New York"
	rows := []struct {
		name string
		row  Row
		want int64
	}{
		{"product", Product{ProductID: 7}, 7},
		{"store", Store{StoreID: 3, City: &city}, 3},
		{"calendar", Calendar{DateID: 20240101}, 20240101},
		{"sale", Sale{SalesID: 99, DateID: 20240101}, 99},
	}

	for _, tt := range rows {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Key(); got != tt.want {
				t.Errorf("Key() = %d, want %d", got, tt.want)
			}
		})
	}
}
