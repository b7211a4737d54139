package types

// BusinessStatus tracks the lifecycle of a business account. Deactivation
// itself happens outside the billing core; the engine only records
// cancellation intent and flips the status back on reactivation.
type BusinessStatus string

const (
	BusinessStatusActive      BusinessStatus = "active"
	BusinessStatusDeactivated BusinessStatus = "deactivated"
)
