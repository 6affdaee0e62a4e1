package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrInvalidInput - malformed request payload or configuration value
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found
	ErrNotFound = errors.New("not found")

	// ErrTransient - transient error, the caller may retry
	ErrTransient = errors.New("transient error")

	// ErrInternal - internal error (generic message + trace id to the user)
	ErrInternal = errors.New("internal error")

	// ErrInvalidURL - input is not a well-formed absolute http(s) URL; raised before any network access
	ErrInvalidURL = errors.New("invalid url")

	// ErrFetch - remote page fetch failed at the transport or returned a non-2xx status
	ErrFetch = errors.New("fetch failed")

	// ErrNoContentFound - reader-mode extraction found no usable article body
	ErrNoContentFound = errors.New("no content found")

	// ErrUnknownTool - the model requested a tool that is not registered
	ErrUnknownTool = errors.New("unknown tool")

	// ErrRemoteCall - the remote model endpoint was unreachable or returned a protocol error
	ErrRemoteCall = errors.New("remote model call failed")
)
