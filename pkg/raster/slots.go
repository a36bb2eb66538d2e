package raster

import (
	"image"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// Slots is an ordered, fixed-capacity, sparse collection of rasters indexed
// 0..Len()-1. Index order is capture order and display order; entries are
// never reordered.
//
// Slots is not safe for concurrent use. It is owned by a single session
// (a capture sequence or an upload batch) at a time.
type Slots struct {
	items []*Raster
}

// NewSlots returns an empty collection with capacity n.
func NewSlots(n int) *Slots {
	if n < 0 {
		n = 0
	}
	return &Slots{items: make([]*Raster, n)}
}

// Len returns the capacity of the collection.
func (s *Slots) Len() int { return len(s.items) }

// At returns the raster in slot i, or nil when the slot is empty or out of range.
func (s *Slots) At(i int) *Raster {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Set stores r in slot i, discarding any previous raster.
func (s *Slots) Set(i int, r *Raster) error {
	if err := s.check(i); err != nil {
		return err
	}
	if r == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot store nil raster in slot %d", i)
	}
	s.items[i] = r
	return nil
}

// Clear empties slot i.
func (s *Slots) Clear(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i] = nil
	return nil
}

// Reset empties every slot and resizes the collection to n.
func (s *Slots) Reset(n int) {
	if n < 0 {
		n = 0
	}
	s.items = make([]*Raster, n)
}

// Filled returns the number of populated slots.
func (s *Slots) Filled() int {
	n := 0
	for _, r := range s.items {
		if r != nil {
			n++
		}
	}
	return n
}

// Full reports whether every slot is populated. An empty collection is
// never full.
func (s *Slots) Full() bool {
	return len(s.items) > 0 && s.Filled() == len(s.items)
}

// FirstEmpty returns the lowest empty index at or after from, or -1.
func (s *Slots) FirstEmpty(from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(s.items); i++ {
		if s.items[i] == nil {
			return i
		}
	}
	return -1
}

// Rasters returns a copy of the slot entries, including nil entries for
// empty slots.
func (s *Slots) Rasters() []*Raster {
	return append([]*Raster(nil), s.items...)
}

// Images returns the slot images in index order. It fails with
// INCOMPLETE_SLOTS unless every slot is populated.
func (s *Slots) Images() ([]image.Image, error) {
	if !s.Full() {
		return nil, errors.New(errors.ErrCodeIncompleteSlots, "%d of %d slots populated", s.Filled(), len(s.items))
	}
	out := make([]image.Image, len(s.items))
	for i, r := range s.items {
		out[i] = r.Image()
	}
	return out, nil
}

func (s *Slots) check(i int) error {
	if i < 0 || i >= len(s.items) {
		return errors.New(errors.ErrCodeSlotOutOfRange, "slot %d outside 0..%d", i, len(s.items)-1)
	}
	return nil
}
