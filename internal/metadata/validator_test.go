package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/egresos/pkg/egresos"
)

func TestYearRange_ValidateYear(t *testing.T) {
	tests := []struct {
		name    string
		r       YearRange
		year    int
		wantErr bool
	}{
		{"unbounded", YearRange{}, 1800, false},
		{"inside", YearRange{Min: 2001, Max: 2022}, 2019, false},
		{"min inclusive", YearRange{Min: 2001}, 2001, false},
		{"max inclusive", YearRange{Max: 2022}, 2022, false},
		{"below min", YearRange{Min: 2001}, 2000, true},
		{"above max", YearRange{Max: 2022}, 2023, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.ValidateYear("EGRE.csv", tt.year)
			if tt.wantErr {
				assert.ErrorIs(t, err, egresos.ErrYearOutOfRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}
