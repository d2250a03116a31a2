package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DocumentStore is the flat-file sink: one JSON array holding every record
// ever logged, rewritten wholesale on each append. The raw payload stays
// native structured data here, unlike the relational sink where it is a
// serialized blob.
type DocumentStore struct {
	path string
}

func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

// Append reads the whole file, appends rec, and rewrites it. A missing
// file and an unparseable file are treated the same way: no prior entries.
// That means external corruption is clobbered on the next event rather
// than blocking the log.
func (s *DocumentStore) Append(rec Record) error {
	records, err := s.Load()
	if err != nil {
		records = nil
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize activity log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// Load returns every record currently in the file, in append order. A
// missing file yields an empty log and no error.
func (s *DocumentStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read activity log: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse activity log: %w", err)
	}
	return records, nil
}
