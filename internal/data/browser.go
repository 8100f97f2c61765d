package data

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/browser"

	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

// DefaultClearDataURL is the browser's data-clearing settings page
const DefaultClearDataURL = "chrome://settings/clearBrowserData"

// browserOpener opens the clear-data page in the local browser
type browserOpener struct {
	url  string
	open func(url string) error
}

// NewBrowserOpener creates an opener for url, DefaultClearDataURL when empty
func NewBrowserOpener(url string) repo.Opener {
	if url == "" {
		url = DefaultClearDataURL
	}
	// Silence the launcher
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &browserOpener{url: url, open: browser.OpenURL}
}

// OpenClearData opens the clear-data page
func (o *browserOpener) OpenClearData(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.open(o.url); err != nil {
		return fmt.Errorf("failed to open %s: %w", o.url, err)
	}
	return nil
}
