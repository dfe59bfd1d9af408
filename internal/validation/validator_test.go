package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port   int    `env:"PORT" validate:"gte=1,lte=65535"`
	Mode   string `env:"AUTH_MODE" validate:"oneof=none token"`
	Format string `form:"format_type" validate:"required,oneof=json csv"`
	Nested nested
}

type nested struct {
	Workers int `json:"workers" validate:"gte=1"`
}

func TestValidator_Valid(t *testing.T) {
	v := New()

	err := v.Validate(sample{Port: 8190, Mode: "token", Format: "csv", Nested: nested{Workers: 1}})

	assert.NoError(t, err)
}

func TestValidator_FieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(sample{Port: 0, Mode: "ldap", Format: "", Nested: nested{Workers: 0}})

	var vErr *Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "must be greater than or equal to 1", vErr.Fields["PORT"])
	assert.Equal(t, "must be one of: none token", vErr.Fields["AUTH_MODE"])
	assert.Equal(t, "is required", vErr.Fields["format_type"])
	assert.Equal(t, "must be greater than or equal to 1", vErr.Fields["workers"])
	assert.Contains(t, err.Error(), "PORT must be greater than or equal to 1")
}
