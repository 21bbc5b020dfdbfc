package fit

import (
	"errors"
	"fmt"

	"github.com/san-kum/odefit/internal/dynamo"
)

// ErrInvalidSchedule indicates a malformed horizon schedule. Rejected
// before any stage runs.
var ErrInvalidSchedule = errors.New("fit: invalid horizon schedule")

// InvalidScheduleError reports which schedule was rejected and why.
type InvalidScheduleError struct {
	Schedule []float64
	Reason   string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid horizon schedule %v: %s", e.Schedule, e.Reason)
}

func (e *InvalidScheduleError) Unwrap() error { return ErrInvalidSchedule }

// StageFitError reports a stage that never produced a finite loss: every
// iteration failed with a simulation error. It carries the failing stage,
// its horizon, and the warm-start parameters so the caller can retry from
// a different guess.
type StageFitError struct {
	Stage   int
	Horizon float64
	Initial dynamo.Params
	Cause   error
}

func (e *StageFitError) Error() string {
	return fmt.Sprintf("stage %d (horizon %.4f) produced no finite loss: %v", e.Stage, e.Horizon, e.Cause)
}

func (e *StageFitError) Unwrap() error { return e.Cause }
