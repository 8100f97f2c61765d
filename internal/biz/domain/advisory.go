package domain

import (
	"fmt"
	"strings"
)

// Advisory is the content of a notification before it is shown
type Advisory struct {
	Category       Category
	Title          string
	Vulnerability  string
	Recommendation string
	Matches        []string   // Literal values that justify the detection
	Detected       []Category // Categories listed by an aggregate advisory
	Source         string     // Text the detection ran on, used for masking
}

const (
	aggregateTitle          = "⚠ Formulario solicita múltiples datos sensibles"
	aggregateRecommendation = "Revisa la política del sitio y comparte solo lo necesario. Evita pegar datos en chats públicos."
)

// NewAdvisory builds the advisory for a live detection
func NewAdvisory(c Category, copied bool) Advisory {
	vuln, rec := AdvisoryText(c)
	title := fmt.Sprintf("⚠ %s detectado", strings.ToUpper(c.String()))
	if copied {
		title += " (copiado)"
	}
	return Advisory{
		Category:       c,
		Title:          title,
		Vulnerability:  vuln,
		Recommendation: rec,
	}
}

// NewAggregateAdvisory builds the advisory for a form requesting several categories
func NewAggregateAdvisory(found []Category) Advisory {
	names := make([]string, len(found))
	for i, c := range found {
		names[i] = c.String()
	}
	return Advisory{
		Category:       CategoryMultiple,
		Title:          aggregateTitle,
		Vulnerability:  fmt.Sprintf("Este formulario solicita **múltiples datos sensibles**: %s.", strings.Join(names, ", ")),
		Recommendation: aggregateRecommendation,
		Detected:       found,
	}
}

// AdvisoryText returns the vulnerability and recommendation for a category
func AdvisoryText(c Category) (vulnerability, recommendation string) {
	switch c {
	case CategoryEmail:
		return "Correo electrónico expuesto.", "Evita compartir tu correo en chats o foros públicos."
	case CategoryNationalID:
		return "Número de DNI detectado.", "Nunca compartas tu DNI en plataformas abiertas."
	case CategoryCard:
		return "Posible número de tarjeta detectado.", "No escribas números de tarjeta en ningún campo de texto no seguro."
	case CategoryName:
		return "Exposición de nombre.", "Evita publicar tu nombre completo en foros o juegos públicos."
	case CategoryMultiple:
		return "Este formulario solicita múltiples datos sensibles.", "Revisa la política del sitio y comparte solo lo necesario."
	default:
		return "Dato potencialmente sensible detectado.", "Evita compartir información personal en espacios públicos."
	}
}
