package natmul

import (
	"unsafe"

	apperrors "github.com/agbru/mullo/internal/errors"
)

// overlaps reports whether the backing memory of a and b intersects.
// Empty slices overlap nothing.
func overlaps[L Limb](a, b []L) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	size := unsafe.Sizeof(a[0])
	a0 := uintptr(unsafe.Pointer(&a[0]))
	b0 := uintptr(unsafe.Pointer(&b[0]))
	a1 := a0 + uintptr(len(a))*size
	b1 := b0 + uintptr(len(b))*size
	return a0 < b1 && b0 < a1
}

// mustNotOverlap panics with a PreconditionError when a and b share memory.
func mustNotOverlap[L Limb](op, what string, a, b []L) {
	if overlaps(a, b) {
		panic(apperrors.PreconditionError{Op: op, Message: what + " overlap"})
	}
}
