package usecase

import (
	"regexp"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

type keywordRule struct {
	category domain.Category
	pattern  *regexp.Regexp
}

// keywordTable maps field label text to a category, first match wins.
// It is independent of the value patterns used for live text.
var keywordTable = []keywordRule{
	{domain.CategoryEmail, regexp.MustCompile(`(?i)\b(correo|e-?mail|email)\b`)},
	{domain.CategoryNationalID, regexp.MustCompile(`(?i)\b(dni|documento|c[eé]dula|id\s*nacional|nro\s*doc)\b`)},
	{domain.CategoryCard, regexp.MustCompile(`(?i)\b(tarjeta|credit|debit|cvv|cvc|n[uú]mero\s*de\s*tarjeta|pan)\b`)},
	{domain.CategoryName, regexp.MustCompile(`(?i)\b(nombre(?:\s+real)?|name|nombres|apellidos|apellido)\b`)},
	{domain.CategoryPhone, regexp.MustCompile(`(?i)\b(t[eé]l[eé]fono|cel(ular)?|m[oó]vil|whats?app|phone|n[uú]mero\s*de\s*tel[eé]fono)\b`)},
	{domain.CategoryLocation, regexp.MustCompile(`(?i)\b(ubicaci[oó]n|pa[ií]s|ciudad|direcci[oó]n|address|location|provincia|regi[oó]n)\b`)},
}

// KeywordCategory classifies label text against the keyword table
func KeywordCategory(text string) domain.Category {
	if text == "" {
		return domain.CategoryNone
	}
	for _, rule := range keywordTable {
		if rule.pattern.MatchString(text) {
			return rule.category
		}
	}
	return domain.CategoryNone
}

// keywordCategories returns every category whose keywords appear in text
func keywordCategories(text string) []domain.Category {
	var out []domain.Category
	for _, rule := range keywordTable {
		if rule.pattern.MatchString(text) {
			out = append(out, rule.category)
		}
	}
	return out
}
