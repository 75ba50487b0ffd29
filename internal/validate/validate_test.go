package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

type sample struct {
	Name string `validate:"required"`
	Mode string `validate:"oneof=Cash Bank 'Mobile Money'"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{name: "Valid", in: sample{Name: "till", Mode: "Cash"}},
		{name: "QuotedOneOf", in: sample{Name: "till", Mode: "Mobile Money"}},
		{name: "MissingName", in: sample{Mode: "Bank"}, wantErr: "Name=required"},
		{name: "UnknownMode", in: sample{Name: "till", Mode: "Cheque"}, wantErr: "Mode=oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, validate.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorf(t *testing.T) {
	err := validate.Errorf("granularity %q", "year")
	assert.ErrorIs(t, err, validate.ErrInvalidInput)
	assert.Equal(t, `invalid input: granularity "year"`, err.Error())
}
