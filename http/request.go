package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/indigo-web/streamgate/config"
	"github.com/indigo-web/streamgate/http/codec"
	"github.com/indigo-web/streamgate/http/headers"
	"github.com/indigo-web/streamgate/http/method"
	"github.com/indigo-web/streamgate/http/proto"
	"github.com/indigo-web/streamgate/http/status"
	"github.com/indigo-web/streamgate/transport"
	"github.com/indigo-web/utils/strcomp"
	json "github.com/json-iterator/go"
	"golang.org/x/net/http/httpguts"
)

var codecs = codec.Default()

// Request is a per-connection handle, turning an arbitrarily chunked byte stream into a
// structured HTTP/1.x request. Data is fed via ProcessData as soon as it arrives. Once the
// request is complete, it is handed to the Handler.
//
// Request isn't safe for concurrent use. It is driven by the connection's goroutine only.
type Request struct {
	parser        parser
	status        status.Code
	method        method.Method
	methodName    string
	target        string
	version       proto.Version
	rawVersion    string
	headers       *headers.Table
	contentLength int64
	body          []byte
	extension     any
	handler       Handler
	client        transport.Client
}

func NewRequest(cfg *config.Config, client transport.Client, handler Handler) *Request {
	request := &Request{
		status:  NeedMoreData,
		method:  method.Unknown,
		headers: headers.NewPrealloc(cfg.Headers.Number.Default),
		handler: handler,
		client:  client,
	}
	request.parser = newParser(request, cfg)

	return request
}

// ProcessData feeds the next chunk of bytes. It returns the number of bytes of the chunk which
// belong to the current message. When the message completes in the middle of the chunk, the
// rest is left unconsumed and is available via Leftover.
//
// A malformed message results in status.HTTPError, which code is also reported by ParseStatus.
// ErrFatal is returned if the consumption accounting doesn't hold. In both cases the request
// becomes terminal and no more data is accepted. Feeding a terminal request is a no-op.
func (r *Request) ProcessData(data []byte) (n int, err error) {
	if len(data) == 0 || r.parser.terminal() {
		return 0, nil
	}

	r.parser.buff.Append(data)
	if err = r.parser.parse(); err != nil {
		r.fail(status.CodeOf(err))
		return 0, err
	}

	if r.parser.state != eComplete {
		return len(data), nil
	}

	leftover := r.parser.buff.Len()
	if leftover > len(data) {
		r.fail(status.InternalServerError)
		return 0, ErrFatal
	}

	r.status = Complete

	return len(data) - leftover, nil
}

func (r *Request) fail(code status.Code) {
	r.parser.state = eFailed
	r.status = code
}

// Leftover returns bytes which were fed, but lie beyond the completed message. Usually those
// are the beginning of the next pipelined request. The slice is valid until the next call to
// ProcessData or Reset.
func (r *Request) Leftover() []byte {
	if r.status != Complete {
		return nil
	}

	return r.parser.buff.Remainder()
}

// Reset re-arms the request for the next message on the same connection. The handler, the
// client and the extension are preserved.
func (r *Request) Reset() {
	r.parser.reset()
	r.status = NeedMoreData
	r.method = method.Unknown
	r.methodName = ""
	r.target = ""
	r.version = proto.Version{}
	r.rawVersion = ""
	r.headers.Clear()
	r.contentLength = 0
	r.body = nil
}

// ParseStatus returns either NeedMoreData, Complete or an error code.
func (r *Request) ParseStatus() status.Code {
	return r.status
}

func (r *Request) Method() method.Method {
	return r.method
}

// MethodName returns the method token as it was received. It is the only way to know what
// exactly was requested, if Method is method.Unknown.
func (r *Request) MethodName() string {
	return r.methodName
}

// RequestTarget returns the raw request target, without any decoding.
func (r *Request) RequestTarget() string {
	return r.target
}

// URI is an alias for RequestTarget.
func (r *Request) URI() string {
	return r.target
}

// HTTPVersion returns the protocol token as it was received, e.g. HTTP/1.1
func (r *Request) HTTPVersion() string {
	return r.rawVersion
}

func (r *Request) Version() proto.Version {
	return r.version
}

// VersionAsNumber returns the numeric part of the protocol token, e.g. 1.1. If there's no
// version or it is malformed, 0 is returned.
func (r *Request) VersionAsNumber() float64 {
	return proto.AsNumber(r.rawVersion)
}

func (r *Request) Headers() *headers.Table {
	return r.headers
}

// Header returns the value of the header or an empty string if it isn't presented.
func (r *Request) Header(name string) string {
	return r.headers.Value(name)
}

func (r *Request) HeaderOr(name, or string) string {
	return r.headers.GetOr(name, or)
}

func (r *Request) HasHeader(name string) bool {
	return r.headers.Has(name)
}

// ContentLength returns the declared body length, or 0 if it wasn't declared or is malformed.
// For chunked bodies it is the amount of decoded bytes received so far.
func (r *Request) ContentLength() int64 {
	return r.contentLength
}

// Body returns the body bytes received so far. It is nil until the first body byte arrives.
func (r *Request) Body() []byte {
	return r.body
}

// DecodedBody returns the completed body with all the codings listed in Content-Encoding
// removed. The decoded size is limited by the same value as the body itself.
func (r *Request) DecodedBody() ([]byte, error) {
	if r.status != Complete {
		return nil, ErrNotComplete
	}

	contentEncoding, found := r.headers.Get("Content-Encoding")
	if !found {
		return r.body, nil
	}

	decoded, err := codecs.Decode(contentEncoding, r.body, r.parser.cfg.Body.MaxSize)
	switch {
	case err == nil:
		return decoded, nil
	case errors.Is(err, codec.ErrUnknownCoding):
		return nil, status.ErrUnsupportedEncoding
	case errors.Is(err, codec.ErrTooLarge):
		return nil, status.ErrBodyTooLarge
	default:
		return nil, status.ErrBadContent
	}
}

// JSON decodes the completed body into the model, removing content codings first. The
// Content-Type, if presented, must be application/json.
func (r *Request) JSON(model any) error {
	if r.status != Complete {
		return ErrNotComplete
	}

	if contentType, found := r.headers.Get("Content-Type"); found && !isJSON(contentType) {
		return status.ErrUnsupportedMediaType
	}

	body, err := r.DecodedBody()
	if err != nil {
		return err
	}

	iterator := json.ConfigDefault.BorrowIterator(body)
	iterator.ReadVal(model)
	err = iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

func isJSON(contentType string) bool {
	if semicolon := strings.IndexByte(contentType, ';'); semicolon != -1 {
		contentType = contentType[:semicolon]
	}

	return strcomp.EqualFold(strings.TrimSpace(contentType), "application/json")
}

// KeepAlive tells whether the connection may be reused after this request. HTTP/1.1 keeps the
// connection alive unless asked to close it, HTTP/1.0 does the opposite.
func (r *Request) KeepAlive() bool {
	connection, found := r.headers.Get("Connection")

	switch r.version.Protocol() {
	case proto.HTTP11:
		return !found || !httpguts.HeaderValuesContainsToken([]string{connection}, "close")
	case proto.HTTP10:
		return found && httpguts.HeaderValuesContainsToken([]string{connection}, "keep-alive")
	default:
		return false
	}
}

// SetExtension attaches an arbitrary value to the request. It survives Reset, so it lives as
// long as the connection does.
func (r *Request) SetExtension(ext any) {
	r.extension = ext
}

func (r *Request) Extension() any {
	return r.extension
}

// ExtensionAs returns the extension if it is of type T.
func ExtensionAs[T any](r *Request) (ext T, ok bool) {
	ext, ok = r.extension.(T)
	return ext, ok
}

func (r *Request) SetHandler(handler Handler) {
	r.handler = handler
}

func (r *Request) Handler() Handler {
	return r.handler
}

// Client returns the connection the request is received from.
func (r *Request) Client() transport.Client {
	return r.client
}

// String returns a human-readable dump of the request head, intended for diagnostics only.
func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s (status %d)\n", r.methodName, r.target, r.rawVersion, r.status)

	for key, value := range r.headers.Iter() {
		fmt.Fprintf(&b, "%s: %s\n", key, value)
	}

	if len(r.body) > 0 {
		fmt.Fprintf(&b, "<%d body bytes>\n", len(r.body))
	}

	return b.String()
}
