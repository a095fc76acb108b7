package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"

	coneimg "github.com/ironsheep/cone-finder/internal/imaging"
)

// DirSource replays the still images of a directory as a frame stream.
//
// Files are read in lexical order. Only extensions accepted by
// imaging.IsSupported are used; everything else is skipped.
type DirSource struct {
	mu       sync.Mutex
	dir      string
	files    []string
	next     int
	loop     bool
	released bool
}

// NewDirSource lists dir and returns a source over its images.
//
// Parameters:
//   - dir: Directory containing PNG, JPEG, or GIF frames.
//   - loop: Start over after the last file instead of returning ErrExhausted.
//
// An unreadable directory or one with no images is an error.
func NewDirSource(dir string, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !coneimg.IsSupported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}
	sort.Strings(files)

	return &DirSource{dir: dir, files: files, loop: loop}, nil
}

// Len returns the number of frame files.
func (s *DirSource) Len() int {
	return len(s.files)
}

// Next decodes the next file.
func (s *DirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil, ErrReleased
	}
	if s.next >= len(s.files) {
		if !s.loop {
			s.mu.Unlock()
			return nil, ErrExhausted
		}
		s.next = 0
	}
	path := s.files[s.next]
	s.next++
	s.mu.Unlock()

	img, err := coneimg.LoadFrame(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Release stops the source. Later calls to Next fail with ErrReleased.
func (s *DirSource) Release() error {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	return nil
}

// DirSink writes every shown frame to a directory as frame-00001.png, frame-00002.png, ...
type DirSink struct {
	dir string
	n   int
}

// NewDirSink creates dir if needed and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Show saves frame as the next numbered PNG.
func (s *DirSink) Show(frame image.Image) error {
	s.n++
	path := filepath.Join(s.dir, fmt.Sprintf("frame-%05d.png", s.n))
	if err := imaging.Save(frame, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Aborted is always false: a directory has no operator.
func (s *DirSink) Aborted() bool {
	return false
}

// Written returns the number of frames saved so far.
func (s *DirSink) Written() int {
	return s.n
}

// NopSink discards frames.
type NopSink struct{}

// Show does nothing.
func (NopSink) Show(image.Image) error { return nil }

// Aborted is always false.
func (NopSink) Aborted() bool { return false }
