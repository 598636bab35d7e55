package etl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/cityretail/cityretail-etl/internal/logging"
)

// SnapshotNames are the cleaned snapshot base names, one per logical
// table, stored as <name>.csv under the cleaned directory.
var SnapshotNames = []string{"calendar", "products", "sales", "stores"}

// SnapshotStore persists cleaned tables to disk as the durable
// intermediate representation between cleaning and warehouse load.
//
// Snapshots written by incremental runs are append-only logs of every
// row ever classified as new; only the warehouse itself is
// authoritative for a table's current state.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore returns a store rooted at dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

func (s *SnapshotStore) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// Exists reports whether every named snapshot file is present. A full
// clean that already ran is detected this way and skipped.
func (s *SnapshotStore) Exists(names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(s.path(name)); err != nil {
			return false
		}
	}
	return true
}

// WriteSnapshot writes rows to a fresh snapshot file with a header,
// replacing any previous content. Used by the full cleaning pass.
func WriteSnapshot[T any](s *SnapshotStore, name string, rows []T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	f, err := os.Create(s.path(name))
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", name, err)
	}
	defer f.Close()

	if err := encodeRows(f, rows, true); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	logging.Info().Str("snapshot", name).Int("rows", len(rows)).Msg("Saved cleaned snapshot")
	return nil
}

// AppendSnapshot appends rows to a snapshot file, creating it with a
// header first if absent. Incremental runs append each delta here, so
// the file accumulates every row ever classified as new.
func AppendSnapshot[T any](s *SnapshotStore, name string, rows []T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	header := true
	if _, err := os.Stat(s.path(name)); err == nil {
		header = false
	}

	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", name, err)
	}
	defer f.Close()

	if err := encodeRows(f, rows, header); err != nil {
		return fmt.Errorf("failed to append snapshot %s: %w", name, err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file back into typed records for the
// full-load path.
func ReadSnapshot[T any](s *SnapshotStore, name string) ([]T, error) {
	rows, err := ReadCSV[T](s.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	return rows, nil
}

func encodeRows[T any](f *os.File, rows []T, header bool) error {
	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = header
	if header && len(rows) == 0 {
		// AutoHeader only fires on the first Encode; an empty table
		// still needs a readable snapshot.
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
