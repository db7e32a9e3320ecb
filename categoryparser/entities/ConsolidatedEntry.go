package entities

// ConsolidatedEntry is the resolved, output-facing unit: one per ingredient.
// Metadata fields carry the values of the last record seen for the ingredient
// and are always present in its JSON form, empty or not.
type ConsolidatedEntry struct {
	IngredientName string `json:"ingredient_name"`
	Category       string `json:"category"`
	DrugClassCode  string `json:"drug_class_code"`
	DrugClassName  string `json:"drug_class_name"`
	Route          string `json:"route"`
}

// EntryFromRecord builds the entry for a record, metadata included.
func EntryFromRecord(r Record) ConsolidatedEntry {
	return ConsolidatedEntry{
		IngredientName: r.IngredientName,
		Category:       r.Category,
		DrugClassCode:  r.DrugClassCode,
		DrugClassName:  r.DrugClassName,
		Route:          r.Route,
	}
}
