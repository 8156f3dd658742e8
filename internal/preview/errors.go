package preview

import "fmt"

// ErrorKind classifies preview failures. The kind decides routing: decode
// and server-rejection failures hand off to the fallback viewer, network
// and not-found failures do not.
type ErrorKind string

const (
	KindNetwork        ErrorKind = "network"
	KindNotFound       ErrorKind = "not_found"
	KindMalformed      ErrorKind = "malformed_document"
	KindUnsupported    ErrorKind = "unsupported_format"
	KindServerRejected ErrorKind = "server_rejected"
	KindRender         ErrorKind = "render"
)

// Error is a classified preview failure. Msg is user-facing text; the
// underlying transport or decode error stays in Cause.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewNetworkError reports a request that could not complete.
func NewNetworkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Msg: "could not reach the document server, check your connection", Cause: cause}
}

// NewNotFoundError reports a missing remote object.
func NewNotFoundError(url string) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("the document could not be found at %s", url)}
}

// NewMalformedDocumentError reports bytes that are not a valid document
// of the declared type.
func NewMalformedDocumentError(cause error) *Error {
	return &Error{Kind: KindMalformed, Msg: "the file is not a valid document of its declared type", Cause: cause}
}

// NewServerRejectedError reports a non-2xx response not otherwise
// classified.
func NewServerRejectedError(status int) *Error {
	return &Error{Kind: KindServerRejected, Msg: fmt.Sprintf("the server rejected the request (status %d)", status)}
}

// NewRenderError reports an out-of-range page or a drawing failure.
func NewRenderError(msg string, cause error) *Error {
	return &Error{Kind: KindRender, Msg: msg, Cause: cause}
}

// KindOf returns the classification of err, or an empty kind for
// unclassified errors.
func KindOf(err error) ErrorKind {
	if pe, ok := err.(*Error); ok {
		return pe.Kind
	}
	return ""
}
