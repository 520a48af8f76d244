package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/storefront/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		input     any
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid basket item request",
			input: api.AddBasketItemRequest{ProductId: "camiseta-basica", Quantity: ptr(2)},
		},
		{
			name:      "missing product id",
			input:     api.AddBasketItemRequest{},
			wantField: "ProductId",
			wantMsg:   ErrRequired,
		},
		{
			name:      "malformed product id",
			input:     api.AddBasketItemRequest{ProductId: "Camiseta Básica"},
			wantField: "ProductId",
			wantMsg:   ErrProductId,
		},
		{
			name:      "quantity above limit",
			input:     api.AddBasketItemRequest{ProductId: "p1", Quantity: ptr(11)},
			wantField: "Quantity",
			wantMsg:   "must be at most 10",
		},
		{
			name:      "empty checkout request",
			input:     api.CreateCheckoutSessionRequest{Items: []api.Item{}},
			wantField: "Items",
			wantMsg:   "must contain at least 1 items",
		},
		{
			name:      "invalid item inside checkout request",
			input:     api.CreateCheckoutSessionRequest{Items: []api.Item{{Id: "p1"}, {Id: "../etc"}}},
			wantField: "Id",
			wantMsg:   ErrProductId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErrors validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrors))
			require.NotEmpty(t, validationErrors)

			assert.Equal(t, tt.wantField, validationErrors[0].Field())
			assert.Equal(t, tt.wantMsg, ValidationMessage(validationErrors[0]))
		})
	}
}
