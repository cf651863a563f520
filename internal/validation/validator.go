package validation

import (
	"reflect"
	"regexp"
	"strings"

	"subtrackr/internal/billing"
	"subtrackr/internal/matching"
	"subtrackr/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("billing_cycle", validateBillingCycle)
	_ = v.RegisterValidation("billing_date", validateBillingDate)
	_ = v.RegisterValidation("icon_key", validateIconKey)
	_ = v.RegisterValidation("provider_slug", validateProviderSlug)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateBillingCycle validates that the billing cycle is one of the allowed
// values
func validateBillingCycle(fl validator.FieldLevel) bool {
	return models.IsValidBillingCycle(fl.Field().String())
}

// validateBillingDate validates that the date parses in one of the accepted
// layouts. The canonical form is YYYY-MM-DD; a few legacy layouts are
// tolerated because the advancer accepts them too.
func validateBillingDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}

	_, ok := billing.ParseDate(value)
	return ok
}

// validateIconKey validates that the key belongs to the fixed fallback icon
// set
func validateIconKey(fl validator.FieldLevel) bool {
	return matching.IsValidFallbackIconKey(fl.Field().String())
}

var providerSlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// validateProviderSlug validates lowercase-alphanumeric-with-dashes slugs
func validateProviderSlug(fl validator.FieldLevel) bool {
	return providerSlugPattern.MatchString(fl.Field().String())
}
