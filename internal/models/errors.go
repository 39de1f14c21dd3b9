package models

import "errors"

// Domain errors shared by the loader, resolver and title-chain packages.
// Callers wrap these with context and test for them with errors.Is.
var (
	// ErrConfigMissing means a required top-level file does not exist.
	ErrConfigMissing = errors.New("required file missing")

	// ErrMalformedInput means a file or upload is not well-formed JSON
	// of the expected shape.
	ErrMalformedInput = errors.New("malformed input")

	// ErrPartyFileMissing means no party file could be found for a name.
	// The resolver recovers from it by substituting a placeholder record.
	ErrPartyFileMissing = errors.New("party file missing")

	// ErrAccessDenied means the supplied access token is not on the allow-list.
	ErrAccessDenied = errors.New("access denied")
)
