package expenses

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Built-in expense categories. Stored values must be preserved exactly;
// user-defined categories live alongside them.
const (
	CategoryRent      = "rent"
	CategoryUtilities = "utilities"
	CategoryMarketing = "marketing"
	CategoryFees      = "fees"
	CategoryWages     = "wages"
	CategoryRepairs   = "repairs"
	CategoryOther     = "other"
)

var builtinCategories = map[string]bool{
	CategoryRent: true, CategoryUtilities: true, CategoryMarketing: true,
	CategoryFees: true, CategoryWages: true, CategoryRepairs: true, CategoryOther: true,
}

var titleCaser = cases.Title(language.English)

// IsBuiltinCategory reports whether the category is one of the fixed set.
func IsBuiltinCategory(category string) bool {
	return builtinCategories[strings.ToLower(category)]
}

// NormalizeCategory canonicalises a category label. Built-in values pass
// through lowercased; custom labels are trimmed and title-cased so "  gold
// polish  " and "Gold Polish" land in the same bucket.
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return CategoryOther
	}
	if builtinCategories[strings.ToLower(trimmed)] {
		return strings.ToLower(trimmed)
	}
	return titleCaser.String(strings.ToLower(trimmed))
}
