// Package imaging provides the pixel-level stages of the cone finder.
//
// This package turns a camera frame into a binary color mask and draws debug
// annotations back onto frames. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner of the
// frame, X increases rightward, and Y increases downward. Frames whose bounds do
// not start at the origin are translated so mask coordinates are always 0-based.
//
// # Color Space
//
// Color ranges are expressed in HSV using the 8-bit scale common to OpenCV:
//   - H: hue in degrees divided by two (0-179)
//   - S: saturation scaled to 0-255
//   - V: value (brightness) scaled to 0-255
//
// The RGB to HSV conversion itself is delegated to go-colorful and then rescaled.
//
// # Segmentation
//
// Segment runs the three steps of the segmentation stage in order:
//
//  1. ToHSV: convert every pixel of the frame to HSV
//  2. InRange: mark pixels whose H, S and V all fall inside [lo, hi] inclusive
//  3. Erode: one pass of a 5x5 all-ones kernel anchored at its center
//
// Erosion only ever clears mask bits, so a foreground pixel in the final mask is
// always inside the requested range.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Masks and HSV images are plain
// values owned by the caller; they are not synchronized.
package imaging
