package session

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ironsheep/plate-capture/internal/store"
)

// VehicleKind selects the flat parking fee.
type VehicleKind string

const (
	Bike VehicleKind = "bike"
	Car  VehicleKind = "car"
)

// Fees in VND.
const (
	BikeFee = 3000
	CarFee  = 5000
)

// ErrUnknownVehicle is returned by Fee for unsupported kinds.
var ErrUnknownVehicle = errors.New("unknown vehicle kind")

// Fee returns the fee in VND for kind. Kinds are matched case-insensitively.
func Fee(kind VehicleKind) (int, error) {
	switch VehicleKind(strings.ToLower(string(kind))) {
	case Bike:
		return BikeFee, nil
	case Car:
		return CarFee, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVehicle, kind)
}

// CheckIn saves the last recognized frame under its plate.
//
// It fails with ErrNoPlate when the last processed frame had no readable
// plate and with ErrAlreadyCheckedIn when the plate is already in the lot.
func (s *Session) CheckIn() (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Known() || s.currentFrame == nil {
		return Entry{}, ErrNoPlate
	}
	p := s.current.Text

	exists, err := s.store.Exists(p)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to check %s: %w", p, err)
	}
	if exists {
		return Entry{}, fmt.Errorf("%s: %w", p, ErrAlreadyCheckedIn)
	}

	at, err := s.store.Save(p, s.currentFrame)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to check in %s: %w", p, err)
	}
	log.Printf("session: checked in %s", p)
	return Entry{Plate: p, At: at}, nil
}

// CheckOut removes the stored entry of plate, or of the current plate when
// plate is empty. It returns the plate it resolved and whether an entry
// existed.
func (s *Session) CheckOut(plate string) (string, bool, error) {
	p, err := s.resolve(plate)
	if err != nil {
		return "", false, err
	}

	exists, err := s.store.Exists(p)
	if err != nil {
		return p, false, fmt.Errorf("failed to check %s: %w", p, err)
	}
	if !exists {
		return p, false, nil
	}
	if err := s.store.Delete(p); err != nil {
		return p, false, fmt.Errorf("failed to check out %s: %w", p, err)
	}
	log.Printf("session: checked out %s", p)
	return p, true, nil
}

// Status reports whether plate, or the current plate when plate is empty,
// is in the lot and since when.
func (s *Session) Status(plate string) (Status, error) {
	p, err := s.resolve(plate)
	if err != nil {
		return Status{}, err
	}

	at, _, err := s.store.Latest(p)
	if errors.Is(err, store.ErrNotFound) {
		return Status{Plate: p}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to look up %s: %w", p, err)
	}
	return Status{Plate: p, InLot: true, Since: &at}, nil
}

// resolve returns plate, or the current plate when plate is empty.
func (s *Session) resolve(plate string) (string, error) {
	if plate != "" {
		return plate, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.Known() {
		return "", ErrNoPlate
	}
	return s.current.Text, nil
}
