//go:build !gocv

package camera

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenDevice_NoBackend(t *testing.T) {
	_, err := OpenDevice(0, 640, 480)
	assert.ErrorIs(t, err, ErrNoBackend)

	var d Device
	_, err = d.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoBackend)
	assert.NoError(t, d.Release())
}

func TestOpenWindow_NoBackend(t *testing.T) {
	_, err := OpenWindow("cones")
	assert.ErrorIs(t, err, ErrNoBackend)
}
