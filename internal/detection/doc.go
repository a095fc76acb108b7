// Package detection turns a binary color mask into accepted cone detections.
//
// The package implements the two shape stages of the cone finder pipeline:
//
//   - Contour extraction: border following over connected mask regions
//   - Shape filtering: area threshold, polygon approximation and vertex count
//
// # Algorithm Overview
//
//  1. FindContours traces every outer border and every hole border in the mask
//     (Suzuki-Abe border following) and records the tree hierarchy between them.
//     Each border is compressed to the points where its direction changes, so a
//     filled rectangle comes back as its four corners.
//  2. Filter measures each contour's area with the shoelace formula, rejects
//     anything at or below the minimum area, approximates the rest with
//     Douglas-Peucker at a tolerance of 2% of the closed perimeter, and keeps
//     only approximations with exactly four vertices.
//  3. The anchor of a detection is the first vertex of its approximation. No
//     centroid is computed.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Contour points are pixel centers, so a filled block of w x h pixels has a
// traced area of (w-1) x (h-1).
//
// # Ordering
//
// Contours are returned in raster order of their starting pixel. Filter keeps
// that order and never ranks detections by size or position; callers that want
// a different policy apply it to Filter's output.
package detection
