package core

import "errors"

// Error taxonomy for the generation path. Each failure surfaced at the request
// boundary wraps exactly one of these sentinels so transports can map them to
// status codes with errors.Is.
var (
	// ErrInvalidRequest indicates bad or missing user input. Not retryable.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownModel indicates the requested model is not registered.
	ErrUnknownModel = errors.New("unknown model")
	// ErrBackendLoadFailure indicates the backend's lazy initialization failed.
	ErrBackendLoadFailure = errors.New("backend load failed")
	// ErrVoiceUnavailable indicates the resolved voice code is not among the
	// backend's loaded voices.
	ErrVoiceUnavailable = errors.New("voice unavailable")
	// ErrGenerationFailure indicates synthesis itself failed. The orchestrator
	// performs no retry.
	ErrGenerationFailure = errors.New("generation failed")
)
