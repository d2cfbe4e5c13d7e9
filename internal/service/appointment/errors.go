package appointment

import "errors"

var (
	// ErrInvalidDate is returned for a malformed or past booking date.
	ErrInvalidDate = errors.New("requested date is invalid or in the past")

	// ErrSlotConflict is returned when the (practitioner, date, time) slot
	// is already held by a live appointment. Callers recover by
	// re-resolving availability and picking another slot.
	ErrSlotConflict = errors.New("slot is already booked")

	// ErrInvalidTransition is returned when the requested status change is
	// not permitted from the record's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPractitionerRequired is returned when confirmation is attempted
	// without an assigned practitioner.
	ErrPractitionerRequired = errors.New("practitioner must be assigned first")
)
