package domain

import "strings"

// Category identifies the kind of spending an expense belongs to.
// Values outside the enumerated set are kept verbatim.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

// Categories lists the enumerated categories in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryFood:          "Food & Dining",
	CategoryTransport:     "Transport",
	CategoryShopping:      "Shopping",
	CategoryBills:         "Bills & Utilities",
	CategoryEntertainment: "Entertainment",
	CategoryHealth:        "Health",
	CategoryEducation:     "Education",
	CategoryOther:         "Other",
}

// NormalizeCategory trims the raw id and defaults an empty one to "other".
func NormalizeCategory(raw string) Category {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryOther
	}
	return Category(raw)
}

// IsKnown reports whether c is one of the enumerated categories.
func (c Category) IsKnown() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable name, or the raw id for unknown categories.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}
