package metadata

import (
	"fmt"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// YearRange bounds accepted years. Zero on either side means unbounded.
type YearRange struct {
	Min int
	Max int
}

// ValidateYear returns an error wrapping egresos.ErrYearOutOfRange when year is outside r.
func (r YearRange) ValidateYear(path string, year int) error {
	if r.Min > 0 && year < r.Min {
		return &YearError{
			FilePath: path,
			Year:     year,
			Message:  fmt.Sprintf("year %d is before the minimum %d", year, r.Min),
			err:      egresos.ErrYearOutOfRange,
		}
	}
	if r.Max > 0 && year > r.Max {
		return &YearError{
			FilePath: path,
			Year:     year,
			Message:  fmt.Sprintf("year %d is after the maximum %d", year, r.Max),
			err:      egresos.ErrYearOutOfRange,
		}
	}
	return nil
}
