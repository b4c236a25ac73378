package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf returns the status code carried by the error. Errors that aren't HTTPError
// are considered to be internal ones.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrBadRequestLine       = NewError(BadRequest, "malformed request line")
	ErrBadProtocol          = NewError(BadRequest, "malformed protocol version")
	ErrBadHeader            = NewError(BadRequest, "malformed header line")
	ErrBadEncoding          = NewError(BadRequest, "bad request encoding")
	ErrBadChunk             = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBadContent           = NewError(BadRequest, "body can't be decoded")
	ErrURITooLong           = NewError(RequestURITooLong, "request URI too long")
	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrTooManyHeaders       = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrUnsupportedMediaType = NewError(UnsupportedMediaType, "unsupported media type")
	ErrUnsupportedEncoding  = NewError(UnsupportedMediaType, "content coding is not supported")
)
