package stats

import "fmt"

// MissingDataError means the provider has not yet published the reference date.
type MissingDataError struct {
	Date string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("data for reference date %s is missing", e.Date)
}

// ProviderUnavailableError wraps a failed raw record fetch.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}
