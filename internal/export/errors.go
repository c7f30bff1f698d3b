package export

import (
	"errors"
	"fmt"

	"github.com/piwi3910/StrataLines/internal/render"
)

var (
	// ErrInvalidConfig wraps every configuration problem found before any
	// subdivision is computed.
	ErrInvalidConfig = errors.New("invalid export configuration")

	// ErrExportAborted is reported when the export is cancelled between
	// subdivisions.
	ErrExportAborted = errors.New("export aborted")

	// ErrJobAlreadyRun is returned by Run on a job that has already started.
	ErrJobAlreadyRun = errors.New("export job already run")
)

// SubdivisionError records which subdivision and stage failed.
type SubdivisionError struct {
	Index int
	Stage Stage
	Err   error
}

func (e *SubdivisionError) Error() string {
	return fmt.Sprintf("subdivision %d (%s): %v", e.Index, e.Stage, e.Err)
}

func (e *SubdivisionError) Unwrap() error { return e.Err }

// Kind classifies an export failure.
type Kind int

const (
	KindNone Kind = iota
	KindConfiguration
	KindValidation
	KindRendering
	KindAborted
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindRendering:
		return "rendering"
	case KindAborted:
		return "aborted"
	default:
		return "none"
	}
}

// KindOf classifies err. Anything not recognised is a rendering failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrExportAborted):
		return KindAborted
	case errors.Is(err, ErrInvalidConfig):
		return KindConfiguration
	case errors.Is(err, render.ErrBaseTilesNotRendered), errors.Is(err, render.ErrTracksNotRendered):
		return KindValidation
	default:
		return KindRendering
	}
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
