package http

import (
	"io"
	"strconv"

	"github.com/indigo-web/streamgate/http/status"
	"github.com/indigo-web/utils/uf"
)

// WriteStatus writes a response with no body. Responses here are deliberately minimal: the
// status line and the framing headers only.
func WriteStatus(w io.Writer, code status.Code, keepAlive bool) error {
	return Write(w, code, "", nil, keepAlive)
}

// Write writes a complete response carrying the body. Content-Type is omitted if empty.
func Write(w io.Writer, code status.Code, contentType string, body []byte, keepAlive bool) error {
	buff := make([]byte, 0, 128+len(body))
	buff = append(buff, "HTTP/1.1 "...)
	buff = strconv.AppendUint(buff, uint64(code), 10)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(code)...)
	buff = append(buff, "\r\n"...)

	if !keepAlive {
		buff = append(buff, "Connection: close\r\n"...)
	}

	if len(contentType) > 0 {
		buff = append(buff, "Content-Type: "...)
		buff = append(buff, contentType...)
		buff = append(buff, "\r\n"...)
	}

	buff = append(buff, "Content-Length: "...)
	buff = strconv.AppendInt(buff, int64(len(body)), 10)
	buff = append(buff, "\r\n\r\n"...)
	buff = append(buff, body...)

	_, err := w.Write(buff)
	return err
}

// String is a shortcut for Write with a text/plain body.
func String(w io.Writer, code status.Code, body string, keepAlive bool) error {
	return Write(w, code, "text/plain", uf.S2B(body), keepAlive)
}
