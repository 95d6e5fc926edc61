package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

type sample struct {
	Name  string `validate:"required"`
	Code  string `validate:"len=3"`
	Count int    `validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   sample
		wantErr string
	}{
		{name: "Valid", input: sample{Name: "Main", Code: "EUR"}},
		{name: "Missing name", input: sample{Code: "EUR"}, wantErr: "Name required"},
		{name: "Several fields sorted", input: sample{Code: "EURO", Count: -1}, wantErr: "Code len, Count gte, Name required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
