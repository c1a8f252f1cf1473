package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/peer"
	"github.com/hupe1980/mfvec/resource"
)

var (
	_ peer.Peer          = (*Engine)(nil)
	_ peer.Splicer       = (*Engine)(nil)
	_ peer.ElementReader = (*Engine)(nil)
)

var (
	// ErrNotEmpty is returned by Load when the engine already has bound handles.
	ErrNotEmpty = errors.New("engine has bound handles")

	// ErrLoading is returned by Bind and Load while a Load is in progress.
	ErrLoading = errors.New("engine is loading a snapshot")
)

// Engine owns the authoritative storage of bound fields.
//
// Engine is safe for concurrent use. Operations on one handle are serialized
// by that handle's slot lock; operations on distinct handles run in parallel.
type Engine struct {
	rc           *resource.Controller
	logger       *slog.Logger
	shrinkFactor int

	mu    sync.RWMutex
	slots map[model.Handle]*slot
	live    *roaring.Bitmap // bound handles
	next    uint32          // last issued handle
	loading bool            // Load in progress; Bind is refused
}

// New creates an empty engine.
func New(optFns ...func(o *Options)) *Engine {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ShrinkFactor < 2 {
		opts.ShrinkFactor = 2
	}

	return &Engine{
		rc:           opts.Resource,
		logger:       opts.Logger,
		shrinkFactor: opts.ShrinkFactor,
		slots:        make(map[model.Handle]*slot),
		live:         roaring.New(),
	}
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// Default returns the process-wide engine used by fields constructed without
// an explicit peer.
func Default() *Engine {
	return defaultEngine()
}

// Bind allocates storage for initialSize zero tuples and returns its handle.
// It fails with ErrLoading while a Load is restoring handles.
func (e *Engine) Bind(initialSize int) (model.Handle, error) {
	if initialSize < 0 {
		return 0, fmt.Errorf("%w: %d", peer.ErrInvalidSize, initialSize)
	}
	if initialSize > math.MaxInt/model.Components {
		return 0, fmt.Errorf("%w: %d tuples", peer.ErrAllocationFailure, initialSize)
	}

	s := &slot{}
	if err := s.reset(e.rc, initialSize*model.Components); err != nil {
		return 0, err
	}

	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		s.release(e.rc)
		return 0, fmt.Errorf("%w: %w", peer.ErrAllocationFailure, ErrLoading)
	}
	if e.next == math.MaxUint32 {
		e.mu.Unlock()
		s.release(e.rc)
		return 0, fmt.Errorf("%w: handle space exhausted", peer.ErrAllocationFailure)
	}
	e.next++
	h := model.Handle(e.next)
	e.slots[h] = s
	e.live.Add(uint32(h))
	e.mu.Unlock()

	e.logger.Debug("field bound", "handle", uint32(h), "size", initialSize)
	return h, nil
}

// Unbind releases the storage of h.
func (e *Engine) Unbind(h model.Handle) error {
	e.mu.Lock()
	s, ok := e.slots[h]
	if !ok {
		e.mu.Unlock()
		return peer.NewHandleError("unbind", h, peer.ErrUnknownHandle)
	}
	delete(e.slots, h)
	e.live.Remove(uint32(h))
	e.mu.Unlock()

	s.mu.Lock()
	s.release(e.rc)
	s.mu.Unlock()

	e.logger.Debug("field unbound", "handle", uint32(h))
	return nil
}

// Read returns a snapshot of the current value of h.
func (e *Engine) Read(h model.Handle) ([]model.Vec3, error) {
	s, err := e.lookup("read", h)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tuples(), nil
}

// ReadAt returns tuple index of h.
func (e *Engine) ReadAt(h model.Handle, index int) (model.Vec3, error) {
	s, err := e.lookup("read", h)
	if err != nil {
		return model.Vec3{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= s.size() {
		return model.Vec3{}, peer.NewHandleError("read", h,
			fmt.Errorf("%w: index %d, size %d", peer.ErrIndexOutOfRange, index, s.size()))
	}
	off := index * model.Components
	return model.Vec3{s.data[off], s.data[off+1], s.data[off+2]}, nil
}

// Size returns the number of tuples held by h.
func (e *Engine) Size(h model.Handle) (int, error) {
	s, err := e.lookup("size", h)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size(), nil
}

// Write atomically replaces the value of h.
func (e *Engine) Write(h model.Handle, tuples []model.Vec3) error {
	s, err := e.lookup("write", h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replace(e.rc, tuples, e.shrinkFactor); err != nil {
		return peer.NewHandleError("write", h, err)
	}
	return nil
}

// Splice removes remove tuples at index and inserts insert in their place.
func (e *Engine) Splice(h model.Handle, index, remove int, insert ...model.Vec3) error {
	s, err := e.lookup("splice", h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.splice(e.rc, index, remove, insert); err != nil {
		return peer.NewHandleError("splice", h, err)
	}
	return nil
}

// Update applies fn to the current value of h and stores the result, as one
// atomic step. It is the engine-side counterpart of a field write: scene
// logic uses it to change a value behind the owning field's back.
//
// fn receives a copy it may modify and return.
func (e *Engine) Update(h model.Handle, fn func(current []model.Vec3) []model.Vec3) error {
	s, err := e.lookup("update", h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replace(e.rc, fn(s.tuples()), e.shrinkFactor); err != nil {
		return peer.NewHandleError("update", h, err)
	}
	return nil
}

// Handles returns the bound handles in ascending order.
func (e *Engine) Handles() []model.Handle {
	e.mu.RLock()
	ids := e.live.ToArray()
	e.mu.RUnlock()

	handles := make([]model.Handle, len(ids))
	for i, id := range ids {
		handles[i] = model.Handle(id)
	}
	return handles
}

// Len returns the number of bound handles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return int(e.live.GetCardinality())
}

// Stats describes the engine's current storage.
type Stats struct {
	Fields      int
	Tuples      int
	MemoryBytes int64
}

// Stats returns a point-in-time summary of the engine.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	slots := make([]*slot, 0, len(e.slots))
	for _, s := range e.slots {
		slots = append(slots, s)
	}
	e.mu.RUnlock()

	st := Stats{Fields: len(slots)}
	for _, s := range slots {
		s.mu.RLock()
		st.Tuples += s.size()
		st.MemoryBytes += s.reserved
		s.mu.RUnlock()
	}
	return st
}

func (e *Engine) lookup(op string, h model.Handle) (*slot, error) {
	e.mu.RLock()
	s, ok := e.slots[h]
	e.mu.RUnlock()
	if !ok {
		return nil, peer.NewHandleError(op, h, peer.ErrUnknownHandle)
	}
	return s, nil
}

// restore binds h with the given value. Used by Load on an empty engine.
func (e *Engine) restore(h model.Handle, tuples []model.Vec3) error {
	if h == 0 {
		return peer.NewHandleError("restore", h, peer.ErrUnknownHandle)
	}

	s := &slot{}
	if err := s.replace(e.rc, tuples, e.shrinkFactor); err != nil {
		return peer.NewHandleError("restore", h, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.slots[h]; exists {
		s.release(e.rc)
		return fmt.Errorf("restore %s: handle already bound", h)
	}
	e.slots[h] = s
	e.live.Add(uint32(h))
	e.next = max(e.next, uint32(h))
	return nil
}
