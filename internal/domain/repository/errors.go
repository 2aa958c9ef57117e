package repository

import "errors"

// Invariant failures detected inside transactional repository methods.
// Usecases translate these into their own error vocabulary.
var (
	ErrClinicNotFound        = errors.New("clinic not found")
	ErrOpenQueueExists       = errors.New("clinic already has an open queue")
	ErrQueueNotFound         = errors.New("queue not found")
	ErrQueueClosed           = errors.New("queue is closed")
	ErrAlreadyServing        = errors.New("a ticket is already being served")
	ErrNotWaiting            = errors.New("ticket is not waiting")
	ErrDuplicateTicketNumber = errors.New("duplicate ticket number")
	ErrStaleRecord           = errors.New("record modified by another process")
)
