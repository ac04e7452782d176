package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrUserNotFound       = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Reconciliation and migration outcomes
	ErrNothingToExport      = fmt.Errorf("nothing to export")
	ErrNothingToWrite       = fmt.Errorf("no found tracks to write")
	ErrPreflightFailed      = fmt.Errorf("preflight checks failed")
	ErrNoCorrelations       = fmt.Errorf("no track correlations recorded")
	ErrConfirmationRequired = fmt.Errorf("confirmation required")
)
