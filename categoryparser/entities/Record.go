package entities

// Record is one accepted data row of the category source file.
type Record struct {
	Route          string `json:"route"`
	DrugClassCode  string `json:"drug_class_code"`
	DrugClassName  string `json:"drug_class_name"`
	IngredientName string `json:"ingredient_name"`
	Category       string `json:"category"`
	Line           int    `json:"-"` // 1-based line in the source file
}
