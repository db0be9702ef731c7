package malloc

import "github.com/zeebo/errs"

// errClass wraps every error constructed by this package.
var errClass = errs.Class("malloc")

// ErrOutOfMemory is returned, conceptually, by the single failure mode on
// the hot path: Allocate/AllocateAligned return nil rather than this value,
// since a hot-path allocator must not allocate to report an error. It
// exists for code that logs or wraps allocation failures explicitly.
var ErrOutOfMemory = errClass.New("out of memory")

// ErrInvalidAlignment is logged (not returned) when AllocateAligned is
// called with an alignment that is not a power of two.
var ErrInvalidAlignment = errClass.New("alignment must be a power of two")

// invariantViolation panics with an errClass-wrapped error. Only called
// from debugAssert, which is compiled out entirely in release builds.
func invariantViolation(msg string) {
	err := errClass.New("invariant violation: %s", msg)
	logger().Error(err.Error())
	panic(err)
}
