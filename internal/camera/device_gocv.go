//go:build gocv

package camera

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Device reads frames from a camera through OpenCV.
type Device struct {
	mu       sync.Mutex
	id       int
	capture  *gocv.VideoCapture
	mat      gocv.Mat
	released bool
}

// OpenDevice opens camera id. Width and height request a capture size; zero
// keeps the driver default.
func OpenDevice(id, width, height int) (*Device, error) {
	capture, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", id, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d is not available", id)
	}
	if width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Device{id: id, capture: capture, mat: gocv.NewMat()}, nil
}

// Next grabs one frame. Empty reads are retried a bounded number of times
// before Next fails with ErrNoSignal.
func (d *Device) Next(ctx context.Context) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil, ErrReleased
	}
	return grab(ctx, d.read, maxEmptyReads, emptyReadBackoff)
}

func (d *Device) read() (image.Image, error) {
	if ok := d.capture.Read(&d.mat); !ok {
		return nil, fmt.Errorf("cannot read camera %d", d.id)
	}
	if d.mat.Empty() {
		return nil, nil
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Release closes the camera.
func (d *Device) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil
	}
	d.released = true
	if err := d.mat.Close(); err != nil {
		d.capture.Close()
		return err
	}
	return d.capture.Close()
}

// Window shows frames in an OpenCV window and watches for the abort key.
type Window struct {
	window  *gocv.Window
	aborted bool
}

// OpenWindow creates a display window.
func OpenWindow(title string) (*Window, error) {
	return &Window{window: gocv.NewWindow(title)}, nil
}

// Show draws frame and polls the keyboard for one millisecond.
func (w *Window) Show(frame image.Image) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	w.window.IMShow(mat)
	if key := w.window.WaitKey(1); key == AbortKey {
		w.aborted = true
	}
	return nil
}

// Aborted reports whether ESC was pressed in the window.
func (w *Window) Aborted() bool {
	return w.aborted
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
