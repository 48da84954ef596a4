package classifier

import "errors"

// Response precondition errors. These surface to the caller as user-facing
// failures; no retry is attempted.
var (
	ErrNoRequests       = errors.New("approval has no approver requests")
	ErrRequestNotFound  = errors.New("no approver request matches the current user")
	ErrAlreadyCompleted = errors.New("approver request is already completed")
)
