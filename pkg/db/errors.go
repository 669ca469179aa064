package db

import "errors"

var (
	// ErrMemberNotFound is returned when a member ID resolves to nothing
	ErrMemberNotFound = errors.New("member not found")

	// ErrInstanceNotFound is returned when an instance ID resolves to nothing
	ErrInstanceNotFound = errors.New("work instance not found")

	// ErrInstanceUnavailable is returned when a claim loses the
	// compare-and-swap race: the instance was assigned between the caller's
	// read and its claim. The caller should refresh the pool and may retry
	// against a different instance.
	ErrInstanceUnavailable = errors.New("work instance no longer available")

	// ErrOccasionNotFound is returned when an occasion ID resolves to nothing
	ErrOccasionNotFound = errors.New("selection occasion not found")

	// ErrHistoryNotFound is returned when a group has no completed occasion
	// history yet
	ErrHistoryNotFound = errors.New("turn order history not found")
)
