// Package source provides the frame sources a capture session reads from:
// directories of still frames and, when built with the gocv tag, video files
// and cameras.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/plate-capture/internal/imaging"
)

// ErrVideoUnsupported is returned by OpenVideo in builds without gocv.
var ErrVideoUnsupported = errors.New("video sources require a build with -tags gocv")

// Source yields frames in acquisition order. Next returns io.EOF once the
// source is exhausted.
type Source interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Open returns a DirSource when target is a directory and a video source
// (file path or camera index) otherwise.
func Open(target string) (Source, error) {
	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		return NewDirSource(target)
	}
	return OpenVideo(target)
}

// DirSource replays the still frames of a directory in name order.
// Subdirectories and files that are not images are ignored.
type DirSource struct {
	paths []string
	next  int
}

// NewDirSource lists the frames in dir.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsFrameFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return &DirSource{paths: paths}, nil
}

// Len returns the number of frames listed.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Next decodes the next frame. Files that fail to decode are logged and
// skipped.
func (s *DirSource) Next(ctx context.Context) (image.Image, error) {
	for s.next < len(s.paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.paths[s.next]
		s.next++

		img, err := imaging.LoadFrame(path)
		if err != nil {
			log.Printf("source: skipping %s: %v", path, err)
			continue
		}
		return img, nil
	}
	return nil, io.EOF
}

// Close implements Source.
func (s *DirSource) Close() error {
	s.next = len(s.paths)
	return nil
}
