// SPDX-License-Identifier: MIT
package analysis

import "fmt"

// InvalidFFTSizeError reports a transform size that is not a power of
// two. It is only ever returned at construction time.
type InvalidFFTSizeError struct {
	Size int
}

func (e *InvalidFFTSizeError) Error() string {
	return fmt.Sprintf("analysis: fft size must be a power of 2, got %d", e.Size)
}

// InsufficientSamplesError reports an input buffer shorter than the
// transform size. The caller is expected to pad or skip the frame.
type InsufficientSamplesError struct {
	Needed int
	Got    int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("analysis: not enough samples: need %d but got %d", e.Needed, e.Got)
}

// TooManyBandsError reports a band count above the fixed ceiling of the
// parallel pipeline's band buffer.
type TooManyBandsError struct {
	Max       int
	Requested int
}

func (e *TooManyBandsError) Error() string {
	return fmt.Sprintf("analysis: too many bands requested: max %d, got %d", e.Max, e.Requested)
}

// BackendError wraps an opaque failure from the compute context. It is
// non-recoverable for the failed call but not for the analyzer.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("analysis: backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
