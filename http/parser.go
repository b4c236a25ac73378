package http

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/indigo-web/streamgate/config"
	"github.com/indigo-web/streamgate/http/method"
	"github.com/indigo-web/streamgate/http/proto"
	"github.com/indigo-web/streamgate/http/status"
	"github.com/indigo-web/streamgate/internal/linebuf"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"golang.org/x/net/http/httpguts"
)

type parserState uint8

const (
	eRequestLine parserState = iota + 1
	eHeaders
	eBody
	eComplete
	eFailed
)

// parser is a line-based resumable state machine. Every call to parse consumes as much of the
// buffered data as currently possible and stops either when more data is required or when the
// message is complete. Nothing past the end of the message is touched, so the rest stays in
// the buffer for the next message.
type parser struct {
	request *Request
	cfg     *config.Config
	buff    *linebuf.Accumulator
	body    bodyAssembler
	state   parserState
	// headerSpace is the amount of bytes taken by the request line and headers so far
	headerSpace   int
	headersNumber int
}

func newParser(request *Request, cfg *config.Config) parser {
	return parser{
		request: request,
		cfg:     cfg,
		buff:    linebuf.New(cfg.URI.RequestLineSize.Default),
		body:    newBodyAssembler(cfg.Body.MaxSize),
		state:   eRequestLine,
	}
}

func (p *parser) terminal() bool {
	return p.state == eComplete || p.state == eFailed
}

func (p *parser) parse() error {
	for {
		switch p.state {
		case eRequestLine:
			line, ok := p.takeLine()
			if !ok {
				if p.buff.Len() > p.cfg.URI.RequestLineSize.Maximal {
					return status.ErrURITooLong
				}

				return nil
			}

			if len(line) > p.cfg.URI.RequestLineSize.Maximal {
				return status.ErrURITooLong
			}

			if err := p.parseRequestLine(line); err != nil {
				return err
			}

			p.state = eHeaders
		case eHeaders:
			line, ok := p.takeLine()
			if !ok {
				if p.headerSpace+p.buff.Len() > p.cfg.Headers.Space.Maximal {
					return status.ErrHeaderFieldsTooLarge
				}

				return nil
			}

			if p.headerSpace > p.cfg.Headers.Space.Maximal {
				return status.ErrHeaderFieldsTooLarge
			}

			if len(line) == 0 {
				if err := p.finishHeaders(); err != nil {
					return err
				}

				continue
			}

			if err := p.parseHeader(line); err != nil {
				return err
			}
		case eBody:
			done, err := p.body.feed(p.request, p.buff)
			if err != nil {
				return err
			}

			if !done {
				return nil
			}

			p.state = eComplete
		case eComplete, eFailed:
			return nil
		}
	}
}

// takeLine pulls the next line, accounting the bytes it took in the header space.
func (p *parser) takeLine() ([]byte, bool) {
	before := p.buff.Len()
	line, ok := p.buff.TakeLine()
	p.headerSpace += before - p.buff.Len()

	return line, ok
}

func (p *parser) parseRequestLine(line []byte) error {
	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return status.ErrBadRequestLine
	}

	methodToken, rest := line[:sp], line[sp+1:]
	sp = bytes.IndexByte(rest, ' ')
	if sp == -1 {
		return status.ErrBadRequestLine
	}

	target, protocol := rest[:sp], rest[sp+1:]
	if len(methodToken) == 0 || len(target) == 0 || bytes.IndexByte(protocol, ' ') != -1 {
		return status.ErrBadRequestLine
	}

	version, ok := proto.FromBytes(protocol)
	if !ok {
		return status.ErrBadProtocol
	}

	request := p.request
	request.method = method.Parse(uf.B2S(methodToken))
	if request.method == method.Unknown {
		request.methodName = string(methodToken)
	} else {
		request.methodName = request.method.String()
	}

	request.target = string(target)
	request.version = version
	request.rawVersion = string(protocol)

	return nil
}

func (p *parser) parseHeader(line []byte) error {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return status.ErrBadHeader
	}

	key := uf.B2S(line[:colon])
	if !httpguts.ValidHeaderFieldName(key) {
		return status.ErrBadHeader
	}

	value := uf.B2S(trimOWS(line[colon+1:]))
	if !httpguts.ValidHeaderFieldValue(value) {
		return status.ErrBadHeader
	}

	if p.headersNumber++; p.headersNumber > p.cfg.Headers.Number.Maximal {
		return status.ErrTooManyHeaders
	}

	p.request.headers.Set(strings.Clone(key), strings.Clone(value))

	return nil
}

func (p *parser) finishHeaders() error {
	request := p.request
	chunked, err := isChunked(request.headers.Value("Transfer-Encoding"))
	if err != nil {
		return err
	}

	if chunked {
		request.contentLength = 0
		p.body.reset(-1, request.headers.Has("Trailer"))
		p.state = eBody

		return nil
	}

	request.contentLength = parseContentLength(request.headers.Value("Content-Length"))
	if request.contentLength > p.cfg.Body.MaxSize {
		return status.ErrBodyTooLarge
	}

	if request.contentLength == 0 {
		p.state = eComplete
		return nil
	}

	p.body.reset(request.contentLength, false)
	p.state = eBody

	return nil
}

func (p *parser) reset() {
	p.buff.Reset()
	p.headerSpace = 0
	p.headersNumber = 0
	p.state = eRequestLine
}

// parseContentLength degrades to 0 if the value is missing or isn't a non-negative number.
func parseContentLength(value string) int64 {
	length, err := strconv.ParseUint(value, 10, 63)
	if err != nil {
		return 0
	}

	return int64(length)
}

// isChunked reports whether chunked is the final transfer coding. Any other final coding
// makes the message length undeterminable, which is a bad request.
func isChunked(te string) (bool, error) {
	if len(te) == 0 {
		return false, nil
	}

	last := te
	if comma := strings.LastIndexByte(te, ','); comma != -1 {
		last = te[comma+1:]
	}

	if !strcomp.EqualFold(strings.TrimSpace(last), "chunked") {
		return false, status.ErrBadEncoding
	}

	return true, nil
}

func trimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}

	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}

	return b
}
