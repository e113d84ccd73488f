package disney

import "errors"

// Error taxonomy for the availability engine. Transient conditions are
// reported as nil payloads; these sentinels mark the conditions that change
// control flow.
var (
	// ErrBrowserNotFound indicates the Chrome/Chromium executable is missing
	ErrBrowserNotFound = errors.New("browser executable not found")

	// ErrLoginInterrupted indicates the interactive login flow was aborted
	ErrLoginInterrupted = errors.New("login process was interrupted")

	// ErrSessionExpired indicates the first search cycle produced no payload,
	// which almost always means the stored session is no longer valid
	ErrSessionExpired = errors.New("session may have expired")

	// ErrDateUnreachable indicates the target date never became selectable
	// after the bounded month advancement
	ErrDateUnreachable = errors.New("date is not available to select")

	// ErrMalformedPayload indicates the availability response could not be
	// decoded
	ErrMalformedPayload = errors.New("malformed availability payload")
)
