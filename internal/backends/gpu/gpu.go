package gpu

import (
	"unsafe"

	"github.com/LynnColeArt/guda"

	"par-ca/internal/core"
)

// kernelBlock is the flat thread-block size for 1D launches.
const kernelBlock = 256

// devAlloc wraps guda.Malloc in the allocation error taxonomy.
func devAlloc(op string, bytes int) (guda.DevicePtr, error) {
	ptr, err := guda.Malloc(bytes)
	if err != nil {
		return guda.DevicePtr{}, &core.AllocationError{Op: op, Bytes: bytes, Err: err}
	}
	return ptr, nil
}

// devWords reinterprets device memory as 64-bit words. guda.Malloc returns
// cache-line aligned memory, so the cast is safe.
func devWords(ptr guda.DevicePtr, n int) []uint64 {
	b := ptr.Byte()
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
}

// launch submits a kernel and waits for it, folding failures into the
// accelerator error taxonomy.
func launch(op string, k guda.KernelFunc, grid, block guda.Dim3) error {
	if err := guda.LaunchFunc(k, grid, block); err != nil {
		return &core.AcceleratorError{Op: op, Err: err}
	}
	if err := guda.Synchronize(); err != nil {
		return &core.AcceleratorError{Op: op, Err: err}
	}
	return nil
}

// free releases a device buffer, preserving the first error.
func free(op string, ptr guda.DevicePtr, first *error) {
	if err := guda.Free(ptr); err != nil && *first == nil {
		*first = &core.AcceleratorError{Op: op, Err: err}
	}
}
