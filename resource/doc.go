// Package resource governs the resources consumed by peer storage and by
// background persistence work.
//
//   - Memory: fail-fast budget for authoritative field storage
//   - Background: bounded number of concurrent persistence jobs
//   - IO: token bucket limit on snapshot upload throughput
//
// Memory reservations never block. Field operations must complete in bounded
// time, so an exhausted budget is reported to the caller immediately:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//	if err := rc.AcquireMemory(n * resource.TupleBytes); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(n * resource.TupleBytes)
//
// All methods are safe on a nil *Controller and become no-ops, so limiting is
// optional everywhere a controller is accepted.
package resource
