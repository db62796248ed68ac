package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImmat(t *testing.T) {
	tests := []struct {
		name   string
		immat  string
		expect bool
	}{
		{"new format", "AB-123-CD", true},
		{"new format lowercase", "ab-123-cd", true},
		{"new format with spaces", " AB-123-CD ", true},
		{"old format", "123-ABC-75", true},
		{"old format short", "1-AB-75", true},
		{"empty", "", false},
		{"no separators", "AB123CD", false},
		{"too many letters", "ABC-123-CD", false},
		{"plain word", "camion", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ValidateImmat(tt.immat))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		expect bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid subdomain", "user@sub.domain.com", true},
		{"empty string", "", false},
		{"missing at sign", "userexample.com", false},
		{"missing domain", "user@", false},
		{"no TLD", "user@example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ValidateEmail(tt.email))
		})
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(0))
	assert.NoError(t, ValidateAmount(1250.50))
	assert.Error(t, ValidateAmount(-1))
	assert.Error(t, ValidateAmount(1000001))
}

func TestValidateStringLength(t *testing.T) {
	assert.NoError(t, ValidateStringLength("hello", 1, 10))
	assert.Error(t, ValidateStringLength("", 1, 10))
	assert.Error(t, ValidateStringLength("abcdefghijk", 1, 10))
	assert.NoError(t, ValidateStringLength("a very long string here", 1, 0))
	assert.Error(t, ValidateStringLength("  ab  ", 5, 10))
}

func TestValidationError_AddError(t *testing.T) {
	ve := &ValidationError{}
	ve.AddError("immat", "immat is required")

	require.NotNil(t, ve.Errors)
	msg, exists := ve.GetFieldError("immat")
	assert.True(t, exists)
	assert.Equal(t, "immat is required", msg)

	_, exists = ve.GetFieldError("missing")
	assert.False(t, exists)
}

func TestValidationError_HasErrors(t *testing.T) {
	ve := &ValidationError{Errors: make(map[string]string)}
	assert.False(t, ve.HasErrors())

	ve.AddError("x", "y")
	assert.True(t, ve.HasErrors())
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{
		Errors: map[string]string{
			"immat": "immat is required",
			"type":  "unknown vehicle type",
		},
	}

	errStr := ve.Error()
	assert.Contains(t, errStr, "immat: immat is required")
	assert.Contains(t, errStr, "type: unknown vehicle type")
}

type createVehiclePayload struct {
	Immat  string `validate:"required,immat"`
	Type   string `validate:"required,vehicle_type"`
	Status string `validate:"omitempty,vehicle_status"`
	Role   string `validate:"required,user_role"`
}

func TestValidateStruct_CustomRules(t *testing.T) {
	valid := createVehiclePayload{
		Immat:  "AB-123-CD",
		Type:   "Porteur",
		Status: "actif",
		Role:   "directeur",
	}
	assert.NoError(t, ValidateStruct(&valid))

	invalid := createVehiclePayload{
		Immat:  "not-a-plate",
		Type:   "Fourgon",
		Status: "parked",
		Role:   "admin",
	}
	err := ValidateStruct(&invalid)
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	_, exists := vErr.GetFieldError("Immat")
	assert.True(t, exists)
	_, exists = vErr.GetFieldError("Type")
	assert.True(t, exists)
	_, exists = vErr.GetFieldError("Role")
	assert.True(t, exists)
}

type rdvPayload struct {
	Date string `validate:"required,rdv_date"`
	Time string `validate:"required,rdv_time"`
}

func TestValidateStruct_RdvFormats(t *testing.T) {
	assert.NoError(t, ValidateStruct(&rdvPayload{Date: "2026-01-30", Time: "09:00"}))
	assert.Error(t, ValidateStruct(&rdvPayload{Date: "30/01/2026", Time: "09:00"}))
	assert.Error(t, ValidateStruct(&rdvPayload{Date: "2026-01-30", Time: "9h00"}))
}
