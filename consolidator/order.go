package consolidator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/giygas/supply-status/categoryparser/entities"
)

// SortMode selects the order of the output artifact. Consumers may depend on
// either order, so there is no implicit choice.
type SortMode string

const (
	// SortByCategory orders by category, then ingredient name
	SortByCategory SortMode = "by-category"
	// SortByIngredient orders by ingredient name only
	SortByIngredient SortMode = "by-ingredient"
)

// ParseSortMode validates a sort mode name
func ParseSortMode(value string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(value))) {
	case SortByCategory:
		return SortByCategory, nil
	case SortByIngredient:
		return SortByIngredient, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (want %s or %s)", value, SortByCategory, SortByIngredient)
}

// Compare orders two entries under the mode. Strings compare byte-wise,
// which for UTF-8 is code point order.
func (m SortMode) Compare(a, b entities.ConsolidatedEntry) int {
	if m == SortByIngredient {
		return strings.Compare(a.IngredientName, b.IngredientName)
	}

	if c := strings.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	return strings.Compare(a.IngredientName, b.IngredientName)
}

// SortEntries sorts entries in place. Ingredient names are unique so the
// order is total and the result does not depend on the input order.
func SortEntries(entries []entities.ConsolidatedEntry, mode SortMode) {
	slices.SortFunc(entries, mode.Compare)
}
