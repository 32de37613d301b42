package resumes

import "errors"

var (
	// ErrNotFound indicates no resume matches the given id.
	ErrNotFound = errors.New("resume not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage indicates the blob store rejected an upload; no record is
	// created on this path.
	ErrStorage = errors.New("blob storage failure")

	// ErrMissingCredential indicates no session cookie could be resolved for a
	// forward request.
	ErrMissingCredential = errors.New("missing session credential")
)
