package service

// Paging bounds for event and alert listings.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
	MaxListOffset    = 1_000_000

	// JobDetailEvents is how many recent events a job detail carries.
	JobDetailEvents = 100

	MaxCloseReasonLen  = 200
	DefaultCloseReason = "manual"
)

// clampPage applies the listing defaults and upper bounds.
func clampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	switch {
	case offset < 0:
		offset = 0
	case offset > MaxListOffset:
		offset = MaxListOffset
	}
	return limit, offset
}
