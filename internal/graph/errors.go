package graph

import (
	"errors"
	"fmt"
)

// Domain errors for layout steps.
var (
	// ErrFrameSkipped indicates the step did not start: another step was in
	// flight or the consumer was not ready.
	ErrFrameSkipped = errors.New("graph: frame skipped")

	// ErrStepAbandoned indicates a step failed part way and its output was
	// discarded. The prior node state is retained.
	ErrStepAbandoned = errors.New("graph: step abandoned")

	// ErrUnstable indicates integration produced a non-finite position or
	// velocity.
	ErrUnstable = errors.New("graph: integration unstable (NaN or Inf)")

	// ErrBackendUnavailable indicates the accelerated pipeline could not be
	// constructed on this platform.
	ErrBackendUnavailable = errors.New("graph: accelerated backend unavailable")

	// ErrStride indicates a flat buffer whose length is not a multiple of the
	// record stride.
	ErrStride = errors.New("graph: buffer length is not a multiple of stride")
)

// StepError wraps a failure with the phase and step it happened in.
type StepError struct {
	Phase   string
	Step    uint64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Phase, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
