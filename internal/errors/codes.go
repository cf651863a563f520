package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials     ErrorCode = "AUTH_001"
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
	AuthAccountLocked          ErrorCode = "AUTH_006"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidDate   ErrorCode = "VALIDATION_006"
)

// User error codes (USER_*)
const (
	UserNotFound      ErrorCode = "USER_001"
	UserAlreadyExists ErrorCode = "USER_002"
	UserInvalidID     ErrorCode = "USER_003"
)

// Subscription error codes (SUBSCRIPTION_*)
const (
	SubscriptionNotFound        ErrorCode = "SUBSCRIPTION_001"
	SubscriptionInvalidCycle    ErrorCode = "SUBSCRIPTION_002"
	SubscriptionInvalidCost     ErrorCode = "SUBSCRIPTION_003"
	SubscriptionInvalidIconKey  ErrorCode = "SUBSCRIPTION_004"
	SubscriptionIconConflict    ErrorCode = "SUBSCRIPTION_005"
	SubscriptionInvalidID       ErrorCode = "SUBSCRIPTION_006"
	SubscriptionInvalidDate     ErrorCode = "SUBSCRIPTION_007"
	SubscriptionInvalidCurrency ErrorCode = "SUBSCRIPTION_008"
)

// Provider error codes (PROVIDER_*)
const (
	ProviderNotFound      ErrorCode = "PROVIDER_001"
	ProviderAlreadyExists ErrorCode = "PROVIDER_002"
	ProviderInvalidSlug   ErrorCode = "PROVIDER_003"
	ProviderInvalidID     ErrorCode = "PROVIDER_004"
	ProviderQueryTooShort ErrorCode = "PROVIDER_005"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials:     "Invalid email or password",
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",
	AuthAccountLocked:          "Account is locked or disabled",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Invalid email address format",
	ValidationInvalidDate:   "Invalid date format or range",

	// User errors
	UserNotFound:      "User not found",
	UserAlreadyExists: "An account with this email already exists",
	UserInvalidID:     "Invalid user ID format",

	// Subscription errors
	SubscriptionNotFound:        "Subscription not found",
	SubscriptionInvalidCycle:    "Billing cycle must be monthly or yearly",
	SubscriptionInvalidCost:     "Subscription cost cannot be negative",
	SubscriptionInvalidIconKey:  "Unknown fallback icon key",
	SubscriptionIconConflict:    "A subscription cannot have both a provider and a fallback icon",
	SubscriptionInvalidID:       "Invalid subscription ID format",
	SubscriptionInvalidDate:     "Invalid next billing date",
	SubscriptionInvalidCurrency: "Currency must be a three-letter code",

	// Provider errors
	ProviderNotFound:      "Provider not found",
	ProviderAlreadyExists: "A provider with this slug already exists",
	ProviderInvalidSlug:   "Slug must contain only lowercase alphanumerics and internal dashes",
	ProviderInvalidID:     "Invalid provider ID format",
	ProviderQueryTooShort: "Search query is too short",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
