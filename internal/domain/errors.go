package domain

import (
	"errors"
	"net/http"
)

// Kind is the closed set of user-facing error categories. Classification
// happens once, at the boundary where an error is first produced; downstream
// code only inspects the kind, it never reclassifies.
type Kind int

const (
	// KindInternal is the catch-all for unexpected failures.
	KindInternal Kind = iota

	// KindInvalidInput covers malformed or disallowed URLs, format ids and
	// missing parameters.
	KindInvalidInput

	// KindVideoUnavailable through KindBlockedDownload are classified from
	// the external tool's error text.
	KindVideoUnavailable
	KindVideoPrivate
	KindAgeRestricted
	KindRegionBlocked
	KindQualityUnavailable
	KindUpstreamBusy
	KindNetworkTrouble
	KindBlockedDownload
	KindUnprocessable

	// KindNoQualitiesFound and KindMetadataUnreadable mean a format listing
	// produced nothing usable.
	KindNoQualitiesFound
	KindMetadataUnreadable

	// KindThumbnailUnavailable means no usable thumbnail URL was found or
	// the relay fetch failed.
	KindThumbnailUnavailable

	// KindServiceUnavailable means the external tool is missing or could
	// not be launched; KindUpstreamTimeout means it ran out of time and was
	// killed.
	KindServiceUnavailable
	KindUpstreamTimeout

	// KindFilePreparationFailed means an expected temporary file was
	// missing or unreadable before any bytes were sent.
	KindFilePreparationFailed

	// KindStreamInterrupted means the failure happened after headers were
	// already sent; the connection is dropped instead of a JSON body.
	KindStreamInterrupted

	// KindRateLimited rejects a request before any downstream work.
	KindRateLimited
)

var kindMessages = map[Kind]string{
	KindInternal:              "Something went wrong on the server. Please try again.",
	KindInvalidInput:          "Please enter a valid YouTube link.",
	KindVideoUnavailable:      "This video is unavailable.",
	KindVideoPrivate:          "This video is private.",
	KindAgeRestricted:         "This video is age-restricted.",
	KindRegionBlocked:         "This video is blocked in your region.",
	KindQualityUnavailable:    "This quality is not available. Please choose another one.",
	KindUpstreamBusy:          "Too many requests right now. Please try again in a few minutes.",
	KindNetworkTrouble:        "Network issue while contacting YouTube. Please try again.",
	KindBlockedDownload:       "This video cannot be downloaded.",
	KindUnprocessable:         "Could not process this video. Please try another link.",
	KindNoQualitiesFound:      "No downloadable qualities were found for this video.",
	KindMetadataUnreadable:    "We couldn't read this video's details. Please try another link.",
	KindThumbnailUnavailable:  "Could not get the thumbnail for this video.",
	KindServiceUnavailable:    "The download service is temporarily unavailable. Please try again later.",
	KindUpstreamTimeout:       "The download service is temporarily unavailable. Please try again later.",
	KindFilePreparationFailed: "Could not prepare the file. Please try again.",
	KindStreamInterrupted:     "Download was interrupted. Please try again.",
	KindRateLimited:           "Too many requests right now. Please try again in a few minutes.",
}

var kindStatuses = map[Kind]int{
	KindInvalidInput:         http.StatusBadRequest,
	KindNoQualitiesFound:     http.StatusNotFound,
	KindThumbnailUnavailable: http.StatusNotFound,
	KindRateLimited:          http.StatusTooManyRequests,
	KindUpstreamTimeout:      http.StatusGatewayTimeout,
}

// Message returns the user-safe message for a kind.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindInternal]
}

// HTTPStatus returns the response status for a kind.
func (k Kind) HTTPStatus() int {
	if status, ok := kindStatuses[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error carries a category plus the underlying cause. The message shown to
// clients always comes from the kind, never from the wrapped error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Message() + ": " + e.Err.Error()
	}
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind. A nil err is fine; the kind alone is the error.
func E(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
