package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/persistence"
)

// Save writes a snapshot of every bound field through m.
//
// Each field is captured under its read lock; fields mutated while the
// snapshot runs are captured either before or after the mutation, never
// in between.
func (e *Engine) Save(ctx context.Context, m *persistence.Manager) (*persistence.Manifest, error) {
	manifest, err := m.Save(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("engine: save: %w", err)
	}
	return manifest, nil
}

// Load restores the last committed snapshot into an empty engine, binding
// every field under its saved handle. Fields constructed on this engine
// afterwards receive handles above the restored ones.
//
// If restoring fails, every handle restored so far is unbound again. While
// Load runs, Bind and other Load calls fail with ErrLoading.
func (e *Engine) Load(ctx context.Context, m *persistence.Manager) (*persistence.Manifest, error) {
	if err := e.beginLoad(); err != nil {
		return nil, err
	}
	defer e.endLoad()

	var restored []model.Handle
	manifest, err := m.Load(ctx, func(h model.Handle, tuples []model.Vec3) error {
		if err := e.restore(h, tuples); err != nil {
			return err
		}
		restored = append(restored, h)
		return nil
	})
	if err != nil {
		for _, h := range restored {
			_ = e.Unbind(h)
		}
		return nil, fmt.Errorf("engine: load: %w", err)
	}

	e.logger.Info("engine restored", "snapshot", manifest.ID, "fields", len(manifest.Fields))
	return manifest, nil
}

func (e *Engine) beginLoad() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading {
		return ErrLoading
	}
	if len(e.slots) != 0 {
		return ErrNotEmpty
	}
	e.loading = true
	return nil
}

func (e *Engine) endLoad() {
	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()
}
