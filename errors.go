package ciecolor

import "errors"

// Sentinel errors for the three error kinds that originate in the core.
// Preparation-time failures wrap one of these with fmt.Errorf("...: %w", err)
// so callers can still errors.Is against the kind.
var (
	// ErrOutOfMemory covers joint-cache allocation failure. Go's allocator
	// does not signal allocation failure to callers the way the source's
	// host environment does (it panics instead), so this sentinel is never
	// returned today; it is kept so a future bounded-allocation path (e.g.
	// a host-imposed memory budget) has a defined error to report through.
	ErrOutOfMemory = errors.New("ciecolor: out of memory")

	// ErrTransformPQR wraps a failure from the host-supplied chromatic
	// adaptation transform, surfaced during joint-cache sampling.
	ErrTransformPQR = errors.New("ciecolor: TransformPQR failed")

	// ErrUnreachableDispatch is returned by RemapCIEABC when the evaluator's
	// device-color stage reports a channel count other than 3 or 4.
	ErrUnreachableDispatch = errors.New("ciecolor: unreachable dispatch in remap_finish")
)
