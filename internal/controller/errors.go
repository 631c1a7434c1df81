package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialsRequired means the record carries no usable
	// authentication material. Raised before any network call.
	ErrCredentialsRequired = errors.New("controller credentials required")

	// ErrAuthenticationFailed means every login endpoint rejected the
	// configured username/password.
	ErrAuthenticationFailed = errors.New("controller authentication failed")

	// ErrNoEndpoint means every candidate endpoint for an operation
	// answered 401, 403 or 404.
	ErrNoEndpoint = errors.New("no endpoint available on this controller")

	// ErrClientNotFound means a client could not be located by MAC.
	ErrClientNotFound = errors.New("client not found on controller")

	// ErrMissingTarget means neither a MAC nor an IP was supplied for an
	// operation that requires one.
	ErrMissingTarget = errors.New("mac or ip required")

	// ErrResolutionFailed means a MAC-by-IP lookup found no match.
	ErrResolutionFailed = errors.New("could not resolve mac from ip")
)

// UpstreamError is a non-2xx appliance response outside {401,403,404}.
// It aborts an endpoint cascade immediately: these statuses indicate a real
// error rather than an API-shape mismatch, so trying another URL shape
// cannot help.
type UpstreamError struct {
	Status int
	URL    string
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("controller returned status %d for %s", e.Status, e.URL)
}
