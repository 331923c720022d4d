package leads

import "errors"

var (
	// ErrBackendUnavailable is returned when the AI backend cannot be
	// reached or rejects the request. The wrapped error keeps the
	// underlying message.
	ErrBackendUnavailable = errors.New("lead service unavailable")

	// ErrMalformedResponse is returned when the backend reply is not
	// valid JSON after fence stripping.
	ErrMalformedResponse = errors.New("lead service returned malformed JSON")

	// ErrInvalidResponseShape is returned when the reply parses but is
	// not a list of lead objects.
	ErrInvalidResponseShape = errors.New("lead service response is not a list of leads")
)
