package reconciliation

import "errors"

var (
	ErrEntryNotFound   = errors.New("reconciliation entry not found")
	ErrAlreadyResolved = errors.New("reconciliation entry already resolved")
	ErrNoteRequired    = errors.New("a resolution note is required")
)
