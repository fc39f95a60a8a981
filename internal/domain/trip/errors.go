package trip

import "errors"

var (
	// ErrProviderUnavailable means a provider cannot be reached or is misconfigured. Fatal.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderTransient marks a timeout or 5xx that is worth retrying.
	ErrProviderTransient = errors.New("provider transient error")

	ErrBudgetInfeasible  = errors.New("budget infeasible")
	ErrTurnLimitExceeded = errors.New("turn limit exceeded")

	ErrInvalidStrategy = errors.New("invalid strategy")
	ErrInvalidRequest  = errors.New("invalid request")
)
