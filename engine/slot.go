package engine

import (
	"fmt"
	"sync"

	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/peer"
	"github.com/hupe1980/mfvec/resource"
)

// floatBytes is the storage cost of one float32 component.
const floatBytes = resource.TupleBytes / model.Components

// slot is the storage of one bound handle.
// data holds 3*size floats; reserved is the memory charged for cap(data).
type slot struct {
	mu       sync.RWMutex
	data     []float32
	reserved int64
}

func (s *slot) size() int {
	return len(s.data) / model.Components
}

func (s *slot) tuples() []model.Vec3 {
	return model.Pack(s.data, s.size())
}

// reset replaces the storage with n zero floats.
func (s *slot) reset(rc *resource.Controller, n int) error {
	if err := s.charge(rc, n); err != nil {
		return err
	}
	if n == 0 {
		s.data = nil
	} else {
		s.data = make([]float32, n)
	}
	return nil
}

// replace stores tuples. Capacity is reused unless it is too small or more
// than shrinkFactor times what is needed.
func (s *slot) replace(rc *resource.Controller, tuples []model.Vec3, shrinkFactor int) error {
	n := len(tuples) * model.Components
	if n > cap(s.data) || cap(s.data) > n*shrinkFactor {
		if err := s.reset(rc, n); err != nil {
			return err
		}
	} else {
		s.data = s.data[:n]
	}

	for i, t := range tuples {
		copy(s.data[i*model.Components:], t[:])
	}
	return nil
}

func (s *slot) splice(rc *resource.Controller, index, remove int, insert []model.Vec3) error {
	size := s.size()
	if index < 0 || remove < 0 || index > size || remove > size-index {
		return fmt.Errorf("%w: index %d, remove %d, size %d", peer.ErrIndexOutOfRange, index, remove, size)
	}

	newSize := size - remove + len(insert)
	start := index * model.Components
	tail := s.data[(index+remove)*model.Components:]
	n := newSize * model.Components

	if n > cap(s.data) {
		grown := max(n, 2*cap(s.data))
		if err := s.charge(rc, grown); err != nil {
			// Near the memory limit, fall back to an exact fit.
			if grown == n {
				return err
			}
			grown = n
			if err := s.charge(rc, grown); err != nil {
				return err
			}
		}
		data := make([]float32, n, grown)
		copy(data, s.data[:start])
		copy(data[start+len(insert)*model.Components:], tail)
		s.data = data
	} else {
		old := s.data
		s.data = s.data[:n]
		// copy handles the overlap of the shifted suffix.
		copy(s.data[start+len(insert)*model.Components:], old[(index+remove)*model.Components:])
	}

	for i, t := range insert {
		copy(s.data[start+i*model.Components:], t[:])
	}
	return nil
}

// charge moves the memory reservation to cover n floats of capacity.
func (s *slot) charge(rc *resource.Controller, n int) error {
	want := int64(n) * floatBytes
	if err := rc.ResizeMemory(s.reserved, want); err != nil {
		return fmt.Errorf("%w: %w", peer.ErrAllocationFailure, err)
	}
	s.reserved = want
	return nil
}

func (s *slot) release(rc *resource.Controller) {
	rc.ReleaseMemory(s.reserved)
	s.reserved = 0
	s.data = nil
}
