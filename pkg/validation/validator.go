package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is the global validator instance
	Validate *validator.Validate

	// French plates: new format AB-123-CD, old format 123-ABC-75
	immatRegex = regexp.MustCompile(`^([A-Z]{2}-\d{3}-[A-Z]{2}|\d{1,4}-[A-Z]{2,3}-\d{2,3})$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func init() {
	Validate = validator.New()

	// Register custom validators
	_ = Validate.RegisterValidation("immat", validateImmat)
	_ = Validate.RegisterValidation("vehicle_type", validateVehicleType)
	_ = Validate.RegisterValidation("vehicle_status", validateVehicleStatus)
	_ = Validate.RegisterValidation("user_role", validateUserRole)
	_ = Validate.RegisterValidation("rdv_date", validateRdvDate)
	_ = Validate.RegisterValidation("rdv_time", validateRdvTime)
}

// ValidationError aggregates field-level validation failures
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for field, msg := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// AddError records a failure for a field
func (e *ValidationError) AddError(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	e.Errors[field] = message
}

// HasErrors reports whether any failure was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// GetFieldError returns the failure message for a field, if any
func (e *ValidationError) GetFieldError(field string) (string, bool) {
	msg, ok := e.Errors[field]
	return msg, ok
}

// NewValidationError converts validator errors into a field error map
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Errors: make(map[string]string)}
	for _, fe := range errs {
		ve.Errors[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return ve
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// validateImmat checks the registration plate format
func validateImmat(fl validator.FieldLevel) bool {
	return ValidateImmat(fl.Field().String())
}

// validateVehicleType checks if vehicle type is valid
func validateVehicleType(fl validator.FieldLevel) bool {
	t := fl.Field().String()
	return contains([]string{"Porteur", "Remorque", "Tracteur"}, t)
}

// validateVehicleStatus checks if vehicle status is valid
func validateVehicleStatus(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	return contains([]string{"actif", "maintenance", "garage"}, status)
}

// validateUserRole checks if user role is valid
func validateUserRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return contains([]string{"directeur", "agent_parc", "exploitant"}, role)
}

// validateRdvDate checks the appointment date format (YYYY-MM-DD)
func validateRdvDate(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^\d{4}-\d{2}-\d{2}$`, fl.Field().String())
	return matched
}

// validateRdvTime checks the appointment time format (HH:MM)
func validateRdvTime(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^\d{2}:\d{2}$`, fl.Field().String())
	return matched
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	for _, s := range slice {
		if strings.ToLower(strings.TrimSpace(s)) == item {
			return true
		}
	}
	return false
}

// ValidateImmat validates a registration plate, ignoring case and surrounding space
func ValidateImmat(immat string) bool {
	immat = strings.ToUpper(strings.TrimSpace(immat))
	return immatRegex.MatchString(immat)
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	return len(email) > 0 && emailRegex.MatchString(email)
}

// ValidateAmount validates a monetary amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount cannot be negative: %f", amount)
	}
	if amount > 1000000 {
		return fmt.Errorf("amount exceeds maximum allowed: %f", amount)
	}
	return nil
}

// ValidateStringLength validates string length after trimming
func ValidateStringLength(s string, min, max int) error {
	length := len(strings.TrimSpace(s))
	if length < min {
		return fmt.Errorf("string length must be at least %d characters, got: %d", min, length)
	}
	if max > 0 && length > max {
		return fmt.Errorf("string length must be at most %d characters, got: %d", max, length)
	}
	return nil
}
