package session

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means no caller identity could be resolved. It is always
// checked before any store or runtime operation runs.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound means the (owner, container) pair is absent from the store.
// A session belonging to another owner reports the same error.
var ErrNotFound = errors.New("session not found")

// ProvisionError is a fatal provisioning failure. Stage is "pull" or "run";
// in both cases no container credential was set and no record was created.
type ProvisionError struct {
	Stage string
	Image string
	Err   error
}

func (e *ProvisionError) Error() string {
	if e.Stage == "pull" {
		return fmt.Sprintf("failed to pull %s: %v", e.Image, e.Err)
	}
	return fmt.Sprintf("failed to start container: %v", e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }
