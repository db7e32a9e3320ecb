package consolidator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giygas/supply-status/categoryparser/entities"
)

// Format selects the JSON layout of the artifact.
type Format string

const (
	// FormatIndent is two-space indented JSON, for review
	FormatIndent Format = "indent"
	// FormatCompact is single-line JSON, for production
	FormatCompact Format = "compact"
)

// ParseFormat validates a format name
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatIndent:
		return FormatIndent, nil
	case FormatCompact:
		return FormatCompact, nil
	}
	return "", fmt.Errorf("unknown output format %q (want %s or %s)", value, FormatIndent, FormatCompact)
}

// categoryEntry is the artifact shape without metadata
type categoryEntry struct {
	IngredientName string `json:"ingredient_name"`
	Category       string `json:"category"`
}

// Marshal serializes entries as a JSON array in their current order.
// Non-ASCII text is written as-is and HTML characters are not escaped. An
// empty or nil slice becomes []. With includeMetadata every entry carries all
// five keys, even when a metadata value is empty.
func Marshal(entries []entities.ConsolidatedEntry, format Format, includeMetadata bool) ([]byte, error) {
	var out any
	if includeMetadata {
		full := make([]entities.ConsolidatedEntry, len(entries))
		copy(full, entries)
		out = full
	} else {
		short := make([]categoryEntry, len(entries))
		for i, entry := range entries {
			short[i] = categoryEntry{IngredientName: entry.IngredientName, Category: entry.Category}
		}
		out = short
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if format == FormatIndent {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode category data: %w", err)
	}

	return buf.Bytes(), nil
}
