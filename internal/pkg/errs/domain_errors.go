package errs

import "errors"

// Error taxonomy shared by every service. Concrete errors are marked with one
// of these so that transports can map them without knowing the origin.
var (
	// Referenced order, book or payment does not exist
	ErrNotFound = errors.New("not found")

	// Payment amount disagrees with price × quantity
	ErrPriceMismatch = errors.New("price mismatch")

	// A dependency stayed unreachable after its retry policy
	ErrServiceUnavailable = errors.New("service unavailable")

	// A consumer handler failed; carried into Fault records
	ErrProcessingFault = errors.New("processing fault")

	// Request failed validation
	ErrInvalidInput = errors.New("invalid input")
)
