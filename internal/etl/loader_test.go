package etl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cityretail/cityretail-etl/internal/model"
	"github.com/cityretail/cityretail-etl/internal/warehouse"
)

// fakeBulkDB records the statements the full load issues so ordering
// can be asserted without a live warehouse.
type fakeBulkDB struct {
	ops []string
}

func (f *fakeBulkDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.ops = append(f.ops, "exec:"+sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeBulkDB) CopyFrom(ctx context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	var n int64
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return n, err
		}
		n++
	}
	f.ops = append(f.ops, fmt.Sprintf("copy:%s:%d", table[0], n))
	return n, nil
}

func writeFullLoadSnapshots(t *testing.T, snap *SnapshotStore) {
	t.Helper()

	city := "New York"
	if err := WriteSnapshot(snap, "products", []model.Product{
		{ProductID: 1, ProductName: "Desk Lamp", Category: "Home", UnitPrice: 35.5},
		{ProductID: 2, ProductName: "Bookshelf", Category: "Home", UnitPrice: 120},
	}); err != nil {
		t.Fatal(err)
	}
	if err := WriteSnapshot(snap, "stores", []model.Store{
		{StoreID: 1, StoreName: "Downtown", Region: "Northeast", City: &city},
	}); err != nil {
		t.Fatal(err)
	}
	if err := WriteSnapshot(snap, "calendar", ParseCalendarDates([]model.RawCalendar{
		{DateID: 20240106, Date: "2024-01-06"},
	})); err != nil {
		t.Fatal(err)
	}
	if err := WriteSnapshot(snap, "sales", []model.Sale{
		{SalesID: 1, DateID: 20240106, ProductID: 1, StoreID: 1, Quantity: 2, Revenue: 71},
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRunFullOrdering(t *testing.T) {
	snap := NewSnapshotStore(t.TempDir())
	writeFullLoadSnapshots(t, snap)

	db := &fakeBulkDB{}
	engine := &Engine{snap: snap}

	if err := engine.runFull(context.Background(), db); err != nil {
		t.Fatalf("runFull failed: %v", err)
	}

	if len(db.ops) == 0 {
		t.Fatal("No statements were issued")
	}

	// The fact clear is the very first statement, before any dimension
	// is touched.
	if db.ops[0] != "exec:DELETE FROM factsales" {
		t.Errorf("First statement should clear factsales, got: %s", db.ops[0])
	}

	// The fact insert is the last statement overall.
	last := db.ops[len(db.ops)-1]
	if !strings.HasPrefix(last, "copy:factsales:") {
		t.Errorf("Last statement should insert factsales, got: %s", last)
	}

	// Every dimension insert happens before the fact insert.
	factInsert := len(db.ops) - 1
	for _, table := range []string{"dimproduct", "dimstore", "dimdate"} {
		found := -1
		for i, op := range db.ops {
			if strings.HasPrefix(op, "copy:"+table+":") {
				found = i
				break
			}
		}
		if found == -1 {
			t.Errorf("No insert recorded for %s", table)
			continue
		}
		if found > factInsert {
			t.Errorf("%s inserted after factsales", table)
		}
	}

	// Each table is cleared before it is inserted.
	for _, table := range []string{"dimproduct", "dimstore", "dimdate"} {
		clearIdx, copyIdx := -1, -1
		for i, op := range db.ops {
			if op == "exec:DELETE FROM "+table {
				clearIdx = i
			}
			if strings.HasPrefix(op, "copy:"+table+":") {
				copyIdx = i
			}
		}
		if clearIdx == -1 || copyIdx == -1 || clearIdx > copyIdx {
			t.Errorf("%s clear/insert out of order (clear=%d, insert=%d)", table, clearIdx, copyIdx)
		}
	}
}

func TestRunFullRowCounts(t *testing.T) {
	snap := NewSnapshotStore(t.TempDir())
	writeFullLoadSnapshots(t, snap)

	db := &fakeBulkDB{}
	engine := &Engine{snap: snap}

	if err := engine.runFull(context.Background(), db); err != nil {
		t.Fatalf("runFull failed: %v", err)
	}

	want := map[string]string{
		"dimproduct": "copy:dimproduct:2",
		"dimstore":   "copy:dimstore:1",
		"dimdate":    "copy:dimdate:1",
		"factsales":  "copy:factsales:1",
	}
	for table, expected := range want {
		found := false
		for _, op := range db.ops {
			if op == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Missing %s (ops: %v)", table, db.ops)
		}
	}
}

// brokenExecer fails every statement, standing in for a warehouse that
// rejects the KPI scripts.
type brokenExecer struct{}

func (brokenExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("relation does not exist")
}

func TestMaintenanceFailureDoesNotFailLoad(t *testing.T) {
	snap := NewSnapshotStore(t.TempDir())
	writeFullLoadSnapshots(t, snap)

	db := &fakeBulkDB{}
	engine := &Engine{snap: snap}
	if err := engine.runFull(context.Background(), db); err != nil {
		t.Fatalf("runFull failed: %v", err)
	}

	// Both failure shapes are swallowed: unreadable script directory
	// and a warehouse rejecting the statements.
	runMaintenance(context.Background(), brokenExecer{}, filepath.Join(t.TempDir(), "missing"))

	dir := t.TempDir()
	for _, name := range warehouse.MaintenanceScripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	runMaintenance(context.Background(), brokenExecer{}, dir)
}

func TestRunFullMissingSnapshot(t *testing.T) {
	snap := NewSnapshotStore(t.TempDir())
	// No snapshots written at all.

	db := &fakeBulkDB{}
	engine := &Engine{snap: snap}

	if err := engine.runFull(context.Background(), db); err == nil {
		t.Error("Expected error when snapshots are missing")
	}
}
