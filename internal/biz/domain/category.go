package domain

import "strings"

// Category identifies the kind of personal data found in a text or a form
type Category string

const (
	CategoryNone       Category = ""
	CategoryEmail      Category = "correo"
	CategoryNationalID Category = "dni"
	CategoryCard       Category = "tarjeta"
	CategoryName       Category = "nombre"
	CategoryPhone      Category = "telefono"
	CategoryLocation   Category = "ubicacion"
	CategoryMultiple   Category = "multiple_campos"
)

// noneLabel is the classifier's wire label for "nothing found"
const noneLabel = "ninguno"

var knownCategories = map[Category]bool{
	CategoryEmail:      true,
	CategoryNationalID: true,
	CategoryCard:       true,
	CategoryName:       true,
	CategoryPhone:      true,
	CategoryLocation:   true,
	CategoryMultiple:   true,
}

// SensitiveCategories are the categories counted towards the aggregate form threshold.
// Location is detected but never counted.
var SensitiveCategories = []Category{
	CategoryEmail,
	CategoryNationalID,
	CategoryCard,
	CategoryName,
	CategoryPhone,
}

// ParseCategory converts a wire value into a Category.
// Unknown values and "ninguno" become CategoryNone.
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == noneLabel {
		return CategoryNone
	}
	c := Category(s)
	if !knownCategories[c] {
		return CategoryNone
	}
	return c
}

// IsNone reports whether the category is the sentinel
func (c Category) IsNone() bool {
	return c == CategoryNone
}

// IsSensitive reports whether the category counts towards the aggregate threshold
func (c Category) IsSensitive() bool {
	for _, s := range SensitiveCategories {
		if s == c {
			return true
		}
	}
	return false
}

// Maskable reports whether a detected value of this category can be masked in place
func (c Category) Maskable() bool {
	switch c {
	case CategoryEmail, CategoryNationalID, CategoryCard:
		return true
	}
	return false
}

// String returns the wire label, "ninguno" for the sentinel
func (c Category) String() string {
	if c == CategoryNone {
		return noneLabel
	}
	return string(c)
}

// MaskedExamples returns the sample masked values shown by the "view examples" action
func MaskedExamples(c Category) []string {
	switch c {
	case CategoryEmail:
		return []string{"j***@correo.com", "m*****.p****@dominio.pe", "u*****+promo@ejemplo.org"}
	case CategoryNationalID:
		return []string{"******12", "*****834", "******90"}
	case CategoryCard:
		return []string{"**** **** **** 1234", "****-****-****-9876", "************4321"}
	default:
		return nil
	}
}
