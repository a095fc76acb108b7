// Package finder runs the cone detection loop.
//
// Each cycle pulls one frame from a camera.Source and sends it through the
// pipeline:
//
//	frame ──▶ Segment ──▶ FindContours ──▶ Filter ──▶ detections
//	           (mask)       (contours)
//
// The first frame that yields at least one detection ends the loop with a
// Result. States move through
//
//	WaitingFrame → Segmenting → Extracting → Filtering → (Accepted | WaitingFrame)
//
// and any state can end in Cancelled when the context is done, the sink
// reports the abort key, the frame budget runs out, or the source fails.
//
// Analyze runs the same pipeline once over a still image and keeps every
// contour's verdict, for tuning profiles against saved photos.
//
// Only one goroutine drives a Loop. Frames, masks and contours live for a
// single cycle.
package finder
