package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/crestline/leasebot/core"
)

// LoadCatalog reads a catalog file: a JSON array of listing records.
// Records failing validation are logged and skipped rather than failing
// the whole load.
func LoadCatalog(path string) ([]*core.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes raw catalog JSON, dropping corrupt records.
func ParseCatalog(data []byte) ([]*core.Property, error) {
	var records []*core.Property
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	valid := make([]*core.Property, 0, len(records))
	for i, p := range records {
		if err := core.ValidateProperty(p); err != nil {
			slog.Warn("skipping corrupt catalog record", "index", i, "err", err)
			continue
		}
		valid = append(valid, p)
	}
	return valid, nil
}
