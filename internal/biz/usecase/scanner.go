package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// Candidate containers, one selector group per site family
var containerSelectors = []string{
	"form",
	".DialogInputLabelGroup, ._DialogLayout, .uwqwoAlIVWyJ8l71i77-i, ._3s6BBoF1hXm0yeOzoVsAQj",
	".setting-section, #settings-container, #rbx-account-info-header",
}

const (
	fieldSelector = `input, textarea, select, [role="combobox"], [contenteditable="true"], ` +
		`.account-settings-text-field, .settings-text-lines-container`

	maxSiblingText   = 200
	maxParentText    = 300
	maxContainerText = 2000
)

// FormFinding is a container requesting several sensitive categories
type FormFinding struct {
	Key        string
	Categories []domain.Category // Every detected category, in detection order
	Sensitive  int
}

// FormScanner finds containers that ask for several sensitive categories at once
type FormScanner struct {
	clock    clockwork.Clock
	cooldown time.Duration

	mu        sync.Mutex
	lastShown map[string]time.Time
}

// NewFormScanner creates a new form scanner
func NewFormScanner(clock clockwork.Clock, cooldown time.Duration) *FormScanner {
	return &FormScanner{
		clock:     clock,
		cooldown:  cooldown,
		lastShown: make(map[string]time.Time),
	}
}

// Scan returns the containers of doc over the threshold and outside their cooldown
func (s *FormScanner) Scan(doc *goquery.Document) []FormFinding {
	now := s.clock.Now()
	var findings []FormFinding

	for _, c := range candidateContainers(doc) {
		key := containerKey(c)
		if s.coolingDown(key, now) {
			continue
		}
		categories, sensitive := categorizeContainer(doc, c)
		if sensitive < 2 {
			continue
		}
		findings = append(findings, FormFinding{Key: key, Categories: categories, Sensitive: sensitive})
	}
	return findings
}

// MarkShown stamps the cooldown of a container
func (s *FormScanner) MarkShown(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastShown[key] = s.clock.Now()
}

func (s *FormScanner) coolingDown(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastShown[key]
	return ok && now.Sub(last) < s.cooldown
}

// candidateContainers lists containers once each, in document order per selector group
func candidateContainers(doc *goquery.Document) []*goquery.Selection {
	seen := make(map[string]bool)
	var out []*goquery.Selection
	for _, selector := range containerSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			key := containerKey(sel)
			if seen[key] {
				return
			}
			seen[key] = true
			out = append(out, sel)
		})
	}
	return out
}

// containerKey is the element path of sel, anchored at the nearest id
func containerKey(sel *goquery.Selection) string {
	var parts []string
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if id, ok := cur.Attr("id"); ok && id != "" {
			parts = append(parts, "#"+id)
			break
		}
		parts = append(parts, fmt.Sprintf("%s:%d", goquery.NodeName(cur), cur.Index()))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ">")
}

func categorizeContainer(doc *goquery.Document, container *goquery.Selection) ([]domain.Category, int) {
	found := make(map[domain.Category]bool)
	var ordered []domain.Category
	add := func(c domain.Category) {
		if c.IsNone() || found[c] {
			return
		}
		found[c] = true
		ordered = append(ordered, c)
	}

	container.Find(fieldSelector).Each(func(_ int, field *goquery.Selection) {
		if isPasswordInput(field) {
			return
		}
		add(KeywordCategory(fieldLabel(doc, field)))
	})

	for _, c := range keywordCategories(truncateRunes(spacedText(container), maxContainerText)) {
		add(c)
	}

	sensitive := 0
	for _, c := range ordered {
		if c.IsSensitive() {
			sensitive++
		}
	}
	return ordered, sensitive
}

func isPasswordInput(field *goquery.Selection) bool {
	if goquery.NodeName(field) != "input" {
		return false
	}
	t, _ := field.Attr("type")
	return strings.EqualFold(t, "password")
}

// fieldLabel gathers the text that describes a field
func fieldLabel(doc *goquery.Document, field *goquery.Selection) string {
	var acc []string
	push := func(s string) {
		if s != "" {
			acc = append(acc, s)
		}
	}

	id, _ := field.Attr("id")
	if id != "" {
		byFor := doc.Find("label[for]").FilterFunction(func(_ int, l *goquery.Selection) bool {
			v, _ := l.Attr("for")
			return v == id
		}).First()
		push(byFor.Text())
	}
	label := field.Closest("label")
	push(label.Text())
	for _, attr := range []string{"aria-label", "placeholder", "name"} {
		v, _ := field.Attr(attr)
		push(v)
	}
	push(id)

	if prev := field.Prev(); prev.Length() > 0 {
		if t := prev.Text(); utf8.RuneCountInString(t) < maxSiblingText {
			push(t)
		}
	}
	if parent := field.Parent(); parent.Length() > 0 {
		if t := parent.Text(); utf8.RuneCountInString(t) < maxParentText {
			push(t)
		}
	}

	// Steam dialogs
	push(label.Find(".DialogLabel").First().Text())
	push(field.Closest(".DialogInputLabelGroup, .DialogInput_Wrapper, ._DialogLayout").Find(".DialogLabel").First().Text())

	// Roblox account settings, read-only until edited
	push(field.Closest(".account-settings-text-field").Find(".account-info-inline-label").First().Text())
	push(field.Closest(".setting-section").Find(".setting-section-header").First().Text())

	return strings.TrimSpace(strings.Join(acc, " "))
}

// spacedText joins the text nodes under sel with single spaces
func spacedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
			case "script", "style":
			default:
				walk(c)
			}
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
