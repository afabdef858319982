package repository

import "errors"

// Error kinds returned by ledger operations. Each kind is final and
// non-retryable; the caller must correct the input and resubmit. The first
// violated precondition determines the kind, and no partial state change
// occurs.
var (
	// ErrOwnerOnly is reserved; no current operation returns it.
	ErrOwnerOnly = errors.New("owner only")
	// ErrNotFound marks a referenced profile, skill, project, or
	// endorsement that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists marks a uniqueness violation on a profile, skill,
	// or project key, or a verifier that is already set.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUnauthorized is reserved; no current operation returns it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput marks an out-of-range proficiency, strength, rating,
	// duration, or an empty username.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientReputation marks an endorser below the reputation
	// floor.
	ErrInsufficientReputation = errors.New("insufficient reputation")
	// ErrAlreadyEndorsed marks a duplicate endorsement key.
	ErrAlreadyEndorsed = errors.New("already endorsed")
	// ErrSelfEndorsement marks an endorser targeting their own skill.
	ErrSelfEndorsement = errors.New("self endorsement")
)
