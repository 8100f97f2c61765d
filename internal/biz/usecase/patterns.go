package usecase

import (
	"regexp"
	"strings"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// fallbackRule is one row of the local classification table
type fallbackRule struct {
	category domain.Category
	pattern  *regexp.Regexp
	// accept filters a candidate match, nil accepts every match
	accept func(text string, loc []int) bool
}

var (
	emailPattern        = regexp.MustCompile(`\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	emailPatternAnyCase = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	nationalIDPattern   = regexp.MustCompile(`\b\d{7,9}\b`)
	cardPattern         = regexp.MustCompile(`\b(?:\d[ \-]?){13,19}\b`)
	namePattern         = regexp.MustCompile(`\b[A-Za-zÁÉÍÓÚÑáéíóúñ]{2,}(?:\s+[A-Za-zÁÉÍÓÚÑáéíóúñ]{2,}){1,3}\b`)

	emailLocalPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@`)
	nationalIDMask    = regexp.MustCompile(`\b(\d{6})(\d{1,3})\b`)
)

// fallbackTable is evaluated in order, first match wins
var fallbackTable = []fallbackRule{
	{category: domain.CategoryEmail, pattern: emailPattern},
	{category: domain.CategoryNationalID, pattern: nationalIDPattern},
	{category: domain.CategoryCard, pattern: cardPattern},
	{category: domain.CategoryName, pattern: namePattern, accept: noContactMarkAhead},
}

// noContactMarkAhead rejects a name candidate when the rest of its line holds an '@' or a digit
func noContactMarkAhead(text string, loc []int) bool {
	rest := text[loc[0]:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return !strings.ContainsAny(rest, "@0123456789")
}

func (r fallbackRule) find(text string) bool {
	if r.accept == nil {
		return r.pattern.MatchString(text)
	}
	for _, loc := range r.pattern.FindAllStringIndex(text, -1) {
		if r.accept(text, loc) {
			return true
		}
	}
	return false
}

// FallbackCategory classifies text with the local pattern table.
// The text is lowercased first, no match yields CategoryNone.
func FallbackCategory(text string) domain.Category {
	lower := strings.ToLower(text)
	for _, rule := range fallbackTable {
		if rule.find(lower) {
			return rule.category
		}
	}
	return domain.CategoryNone
}

// ExtractMatches returns every literal occurrence that justifies category in text.
// Categories without a masking story return nil.
func ExtractMatches(text string, category domain.Category) []string {
	if text == "" {
		return nil
	}
	var re *regexp.Regexp
	switch category {
	case domain.CategoryEmail:
		re = emailPatternAnyCase
	case domain.CategoryNationalID:
		re = nationalIDPattern
	case domain.CategoryCard:
		re = cardPattern
	default:
		return nil
	}
	return re.FindAllString(text, -1)
}

// MaskValue masks every detected value of category inside value
func MaskValue(value string, category domain.Category) string {
	switch category {
	case domain.CategoryEmail:
		return emailLocalPattern.ReplaceAllStringFunc(value, func(m string) string {
			user := strings.TrimSuffix(m, "@")
			stars := len(user) - 1
			if stars < 3 {
				stars = 3
			}
			return user[:1] + strings.Repeat("*", stars) + "@"
		})
	case domain.CategoryNationalID:
		return nationalIDMask.ReplaceAllStringFunc(value, func(m string) string {
			sub := nationalIDMask.FindStringSubmatch(m)
			return strings.Repeat("*", len(sub[1])) + sub[2]
		})
	case domain.CategoryCard:
		return cardPattern.ReplaceAllStringFunc(value, maskCard)
	default:
		return value
	}
}

func maskCard(full string) string {
	var digits []byte
	for i := 0; i < len(full); i++ {
		if full[i] >= '0' && full[i] <= '9' {
			digits = append(digits, full[i])
		}
	}
	keep := 4
	if len(digits) < keep {
		keep = len(digits)
	}
	masked := strings.Repeat("*", len(digits)-keep) + string(digits[len(digits)-keep:])

	var groups []string
	for i := 0; i < len(masked); i += 4 {
		end := i + 4
		if end > len(masked) {
			end = len(masked)
		}
		groups = append(groups, masked[i:end])
	}
	// The pattern may swallow one trailing separator
	trailing := ""
	if last := full[len(full)-1]; last == ' ' || last == '-' {
		trailing = string(last)
	}
	return strings.Join(groups, " ") + trailing
}
