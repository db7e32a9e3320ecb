package entities

// ParseStats counts what happened to each line of one pass over a source.
type ParseStats struct {
	TotalLines      int // data lines seen, header excluded
	Parsed          int
	Blank           int
	MissingColumns  int
	EmptyIngredient int
	FormatErrors    int
}

// Skipped returns the number of rejected data lines
func (s ParseStats) Skipped() int {
	return s.Blank + s.MissingColumns + s.EmptyIngredient + s.FormatErrors
}
