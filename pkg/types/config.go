package types

import "fmt"

// Config holds backend selection and circulation policy parameters for
// Backend.Attach. Numeric policies are defaults, not fixed constants:
// zero values fall back to the Get* defaults below.
type Config struct {
	Backend       string             `json:"backend" yaml:"backend"`
	DataDir       string             `json:"data_dir" yaml:"data_dir"`
	Circulation   CirculationConfig  `json:"circulation" yaml:"circulation"`
	Notifications NotificationConfig `json:"notifications" yaml:"notifications"`
}

// CirculationConfig tunes loan durations and the unit-claim retry bound.
type CirculationConfig struct {
	// InternalLoanHours is the loan duration for internal-use checkouts
	// (due the same working day).
	InternalLoanHours int `json:"internal_loan_hours" yaml:"internal_loan_hours"`
	// ExternalLoanDays is the loan duration for take-home checkouts.
	ExternalLoanDays int `json:"external_loan_days" yaml:"external_loan_days"`
	// ClaimRetries bounds how many times a lost unit-claim race is retried
	// against another available unit before reporting a conflict.
	ClaimRetries int `json:"claim_retries" yaml:"claim_retries"`
}

// NotificationConfig tunes the alert feed derivation.
type NotificationConfig struct {
	// RequestWindowHours is the rolling recency window for surfacing
	// pending requests.
	RequestWindowHours int `json:"request_window_hours" yaml:"request_window_hours"`
	// RefreshSchedule is a cron expression for the periodic feed refresh.
	RefreshSchedule string `json:"refresh_schedule" yaml:"refresh_schedule"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = fmt.Errorf("%w: backend must not be empty", ErrValidation)
	ErrBackendUnknown = fmt.Errorf("%w: unknown backend", ErrValidation)
	ErrPolicyNegative = fmt.Errorf("%w: policy values must not be negative", ErrValidation)
)

// Policy defaults.
const (
	DefaultInternalLoanHours  = 8
	DefaultExternalLoanDays   = 14
	DefaultClaimRetries       = 3
	DefaultRequestWindowHours = 24
	DefaultRefreshSchedule    = "@every 5m"
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. Negative policy values
// are rejected; zero means "use the default".
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Circulation.InternalLoanHours < 0 || c.Circulation.ExternalLoanDays < 0 ||
		c.Circulation.ClaimRetries < 0 {
		return ErrPolicyNegative
	}
	if c.Notifications.RequestWindowHours < 0 {
		return ErrPolicyNegative
	}
	return nil
}

// GetInternalLoanHours returns the configured internal loan duration,
// falling back to the default.
func (c CirculationConfig) GetInternalLoanHours() int {
	if c.InternalLoanHours > 0 {
		return c.InternalLoanHours
	}
	return DefaultInternalLoanHours
}

// GetExternalLoanDays returns the configured external loan duration,
// falling back to the default.
func (c CirculationConfig) GetExternalLoanDays() int {
	if c.ExternalLoanDays > 0 {
		return c.ExternalLoanDays
	}
	return DefaultExternalLoanDays
}

// GetClaimRetries returns the configured claim retry bound, falling back
// to the default.
func (c CirculationConfig) GetClaimRetries() int {
	if c.ClaimRetries > 0 {
		return c.ClaimRetries
	}
	return DefaultClaimRetries
}

// GetRequestWindowHours returns the configured pending-request recency
// window, falling back to the default.
func (c NotificationConfig) GetRequestWindowHours() int {
	if c.RequestWindowHours > 0 {
		return c.RequestWindowHours
	}
	return DefaultRequestWindowHours
}

// GetRefreshSchedule returns the configured refresh cron expression,
// falling back to the default.
func (c NotificationConfig) GetRefreshSchedule() string {
	if c.RefreshSchedule != "" {
		return c.RefreshSchedule
	}
	return DefaultRefreshSchedule
}
