package warehouse

import (
	"fmt"
	"regexp"
	"strings"
)

// Identifiers come only from the static registry, but every builder
// still validates them so a future registry edit cannot smuggle raw
// text into SQL. Values are always bound as parameters.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate checks the spec's identifiers against the allowed pattern
// and confirms the key is part of the column list.
func (s TableSpec) Validate() error {
	if !identPattern.MatchString(s.Name) {
		return fmt.Errorf("invalid table identifier: %q", s.Name)
	}
	if !identPattern.MatchString(s.Key) {
		return fmt.Errorf("invalid key identifier: %q", s.Key)
	}
	keyFound := false
	for _, col := range s.Columns {
		if !identPattern.MatchString(col) {
			return fmt.Errorf("invalid column identifier: %q", col)
		}
		if col == s.Key {
			keyFound = true
		}
	}
	if !keyFound {
		return fmt.Errorf("key %q is not a column of %s", s.Key, s.Name)
	}
	return nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// InsertSQL builds a plain parameterized insert for one row.
func (s TableSpec) InsertSQL() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Name, strings.Join(s.Columns, ", "), placeholders(len(s.Columns)))
}

// UpsertSQL builds a parameterized insert that updates every non-key
// column on primary key conflict.
func (s TableSpec) UpsertSQL() string {
	updates := make([]string, 0, len(s.Columns)-1)
	for _, col := range s.Columns {
		if col == s.Key {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s",
		s.InsertSQL(), s.Key, strings.Join(updates, ", "))
}

// SelectKeysSQL builds the existing-key query used for delta detection.
func (s TableSpec) SelectKeysSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", s.Key, s.Name)
}

// DeleteAllSQL builds the full-table clear used by full reloads.
func (s TableSpec) DeleteAllSQL() string {
	return fmt.Sprintf("DELETE FROM %s", s.Name)
}

// CountSQL builds the row count query used for mode detection.
func (s TableSpec) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", s.Name)
}
