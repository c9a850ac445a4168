package forecast

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval = errors.New("sampling interval must be positive")
	ErrNilLocation     = errors.New("time zone location is nil")
)

// ShapeError reports a metric array whose length does not match the generated time axis.
type ShapeError struct {
	Metric Metric
	Got    int
	Want   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("hourly %s has %d samples, time axis has %d", e.Metric, e.Got, e.Want)
}

// InsufficientDataError reports fewer distinct calendar days than the summary strip needs.
type InsufficientDataError struct {
	Days     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("forecast covers %d calendar days, %d required", e.Days, e.Required)
}
