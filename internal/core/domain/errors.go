package domain

import "errors"

// Conflict errors. Each uniqueness violation gets its own sentinel so the API
// layer can tell the caller exactly which field collided.
var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrMobileTaken     = errors.New("mobile already registered")
	ErrNationalIDTaken = errors.New("national ID already registered")
	ErrVoterIDTaken    = errors.New("voter ID already registered")
	ErrAlreadyVoted    = errors.New("already voted")
)

// One-time-code errors.
var (
	ErrNoActiveCode       = errors.New("no active session")
	ErrInvalidCode        = errors.New("invalid code")
	ErrChannelNotVerified = errors.New("channel not verified")
)

// Face pipeline errors.
var (
	ErrNoFaceDetected  = errors.New("no face detected in provided photo")
	ErrMultipleFaces   = errors.New("more than one face detected in provided photo")
	ErrNoFaceInCapture = errors.New("no face in live capture")
	ErrNotEnrolled     = errors.New("voter has no enrolled embedding")
)

// ErrInvalidInput covers missing or malformed registration fields that survive
// transport-level validation.
var ErrInvalidInput = errors.New("missing or malformed input")

// Lookup and auth errors.
var (
	ErrVoterNotFound      = errors.New("voter not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrExtractorFailure wraps embedding-extractor transport failures so they can
// be surfaced as an upstream error rather than an internal one.
var ErrExtractorFailure = errors.New("embedding extractor unavailable")
