package engine

import (
	"log/slog"

	"github.com/hupe1980/mfvec/resource"
)

// Options configures an Engine.
type Options struct {
	// Resource charges slot storage against a memory budget.
	// If nil, memory is not limited.
	Resource *resource.Controller

	// Logger receives bind/unbind and persistence events.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// ShrinkFactor controls when a bulk write releases excess capacity:
	// a slot is reallocated when its capacity exceeds ShrinkFactor times
	// the new length. Values below 2 are treated as 2.
	ShrinkFactor int
}

// DefaultOptions contains the default engine configuration.
var DefaultOptions = Options{
	ShrinkFactor: 4,
}
