package categoryparser

import "strings"

// Column identifies one logical column of the category source.
type Column int

const (
	ColRoute Column = iota
	ColDrugClassCode
	ColDrugClassName
	ColIngredientName
	ColCategory
)

// RequiredFields is the minimum number of fields a data line must have.
const RequiredFields = 5

// Layout maps each logical column to its field index in a line.
type Layout [RequiredFields]int

// DefaultLayout is the positional order: route, drug class code, drug class
// name, ingredient name, category.
var DefaultLayout = Layout{0, 1, 2, 3, 4}

// Header names used by the published source. The category column is renamed
// every fiscal year (R7年度カテゴリ分類案, R8年度…) so it is matched by suffix.
var headerNames = map[Column]string{
	ColRoute:          "内注外",
	ColDrugClassCode:  "薬効",
	ColDrugClassName:  "分類名",
	ColIngredientName: "成分名",
}

const categoryHeaderSuffix = "カテゴリ分類案"

// ResolveLayout looks the columns up by header name. It reports false, and
// returns DefaultLayout, unless every column is found.
func ResolveLayout(header []string) (Layout, bool) {
	var layout Layout
	found := [RequiredFields]bool{}

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))

		for col, want := range headerNames {
			if name == want && !found[col] {
				layout[col] = i
				found[col] = true
			}
		}

		if strings.HasSuffix(name, categoryHeaderSuffix) && !found[ColCategory] {
			layout[ColCategory] = i
			found[ColCategory] = true
		}
	}

	for _, ok := range found {
		if !ok {
			return DefaultLayout, false
		}
	}

	return layout, true
}

// maxIndex returns the highest field index the layout reads
func (l Layout) maxIndex() int {
	highest := 0
	for _, idx := range l {
		highest = max(highest, idx)
	}
	return highest
}
