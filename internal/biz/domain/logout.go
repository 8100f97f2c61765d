package domain

import (
	"errors"
	"time"
)

// ErrMarkerNotFound is returned when no pending logout marker exists
var ErrMarkerNotFound = errors.New("logout marker not found")

// LogoutMarker carries a pending banner across a navigation
type LogoutMarker struct {
	Host      string    `json:"host"`
	CreatedAt time.Time `json:"ts"`
}

// Fresh checks if the marker is still within ttl
func (m LogoutMarker) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(m.CreatedAt) <= ttl
}

// LogoutClick describes a click observed on the page
type LogoutClick struct {
	Host string // Page hostname
	Href string // href of the closest link, if any
	Text string // Visible text of the clicked element
}

// ClearDataAck is the result of a clear-data request
type ClearDataAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Banner is the logout reminder content
type Banner struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Host  string `json:"host"`
}

// NewLogoutBanner builds the banner shown after leaving a site
func NewLogoutBanner(host string) Banner {
	return Banner{
		Title: "Limpia autocompletado y cookies",
		Body:  "Has cerrado sesión en " + host + ". Te recomendamos limpiar datos del sitio para proteger tu privacidad.",
		Host:  host,
	}
}
