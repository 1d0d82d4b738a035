// Package store keeps one directory of captured frames per plate.
//
// Layout on disk:
//
//	<root>/<plate>/<timestamp>.jpg
//
// A plate is "in the lot" while its directory holds at least one entry.
// Timestamps use a sortable format so the newest entry is the last name in
// lexical order.
package store

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// timeLayout names entry files. It sorts lexically in time order.
const timeLayout = "20060102-150405.000000"

const ext = ".jpg"

var (
	// ErrNotFound is returned when a plate has no stored entry.
	ErrNotFound = errors.New("plate not found")

	// ErrInvalidPlate is returned for plate strings that cannot be used as a
	// directory name.
	ErrInvalidPlate = errors.New("invalid plate")
)

// Store persists captured frames keyed by plate.
type Store interface {
	Exists(plate string) (bool, error)
	Save(plate string, frame image.Image) (time.Time, error)
	Delete(plate string) error
	Latest(plate string) (time.Time, image.Image, error)
}

// DirStore is a Store backed by a directory tree.
//
// DirStore holds no in-memory state; concurrent callers are serialized only
// by the file system.
type DirStore struct {
	root string
	now  func() time.Time
}

// NewDirStore returns a store rooted at root. The directory is created on
// the first Save.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root, now: time.Now}
}

// Root returns the store directory.
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) dir(plate string) (string, error) {
	if plate == "" || plate == "." || plate == ".." || strings.ContainsAny(plate, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlate, plate)
	}
	return filepath.Join(s.root, plate), nil
}

// Exists reports whether the plate has at least one stored entry.
func (s *DirStore) Exists(plate string) (bool, error) {
	_, _, err := s.entries(plate)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save writes frame as a JPEG entry for plate and returns its timestamp.
func (s *DirStore) Save(plate string, frame image.Image) (time.Time, error) {
	dir, err := s.dir(plate)
	if err != nil {
		return time.Time{}, err
	}
	if frame == nil {
		return time.Time{}, fmt.Errorf("failed to save %s: no frame", plate)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return time.Time{}, fmt.Errorf("failed to create plate directory: %w", err)
	}

	at := s.now()
	path := filepath.Join(dir, at.Format(timeLayout)+ext)
	if err := imaging.Save(frame, path, imaging.JPEGQuality(90)); err != nil {
		return time.Time{}, fmt.Errorf("failed to save image: %w", err)
	}
	log.Printf("store: saved %s", path)
	return at, nil
}

// Delete removes every entry of plate. Deleting an absent plate is not an
// error.
func (s *DirStore) Delete(plate string) error {
	dir, err := s.dir(plate)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete plate directory: %w", err)
	}
	log.Printf("store: deleted %s", dir)
	return nil
}

// Latest returns the newest entry of plate. It returns ErrNotFound when the
// plate has no directory or no entries.
func (s *DirStore) Latest(plate string) (time.Time, image.Image, error) {
	dir, names, err := s.entries(plate)
	if err != nil {
		return time.Time{}, nil, err
	}
	name := names[len(names)-1]

	at, err := time.ParseInLocation(timeLayout, strings.TrimSuffix(name, ext), time.Local)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to parse entry time %q: %w", name, err)
	}
	img, err := imaging.Open(filepath.Join(dir, name))
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to open image: %w", err)
	}
	return at, img, nil
}

// entries returns the plate directory and its entry names, oldest first. It
// returns ErrNotFound when there are none.
func (s *DirStore) entries(plate string) (string, []string, error) {
	dir, err := s.dir(plate)
	if err != nil {
		return "", nil, err
	}

	list, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, fmt.Errorf("%s: %w", plate, ErrNotFound)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read plate directory: %w", err)
	}

	var names []string
	for _, e := range list {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", nil, fmt.Errorf("%s: %w", plate, ErrNotFound)
	}
	sort.Strings(names)
	return dir, names, nil
}
