package data

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserOpener(t *testing.T) {
	var opened []string
	o := NewBrowserOpener("").(*browserOpener)
	o.open = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	assert.NoError(t, o.OpenClearData(context.Background()))
	assert.Equal(t, []string{DefaultClearDataURL}, opened)

	o.open = func(string) error { return errors.New("xdg-open: not found") }
	err := o.OpenClearData(context.Background())
	assert.ErrorContains(t, err, "xdg-open")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, o.OpenClearData(ctx), context.Canceled)
}
