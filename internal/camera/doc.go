// Package camera provides frame sources and presentation sinks for the
// detection loop.
//
// A Source hands out one frame per call to Next and owns the capture device;
// Release frees it and may be called more than once. A Sink receives the
// annotated frame of every cycle and reports whether the operator asked to
// stop.
//
// # Backends
//
//   - DirSource: still images from a directory, in lexical order
//   - SliceSource: in-memory frames, for tests and scripted runs
//   - Device: a live camera through OpenCV (requires the gocv build tag)
//   - Window: an OpenCV display window (requires the gocv build tag)
//   - DirSink: writes each shown frame as a numbered PNG
//   - NopSink: discards frames
//
// Transform wraps any Source to rotate frames 180 degrees (a camera mounted
// upside down), mirror them, or downscale them before detection.
package camera
