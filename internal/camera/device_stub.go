//go:build !gocv

package camera

import (
	"context"
	"image"
)

// Device is unavailable without the gocv build tag.
type Device struct{}

// OpenDevice always fails with ErrNoBackend.
func OpenDevice(id, width, height int) (*Device, error) {
	return nil, ErrNoBackend
}

// Next always fails with ErrNoBackend.
func (d *Device) Next(ctx context.Context) (image.Image, error) {
	return nil, ErrNoBackend
}

// Release does nothing.
func (d *Device) Release() error { return nil }

// Window is unavailable without the gocv build tag.
type Window struct{}

// OpenWindow always fails with ErrNoBackend.
func OpenWindow(title string) (*Window, error) {
	return nil, ErrNoBackend
}

// Show always fails with ErrNoBackend.
func (w *Window) Show(frame image.Image) error {
	return ErrNoBackend
}

// Aborted is always false.
func (w *Window) Aborted() bool { return false }

// Close does nothing.
func (w *Window) Close() error { return nil }
