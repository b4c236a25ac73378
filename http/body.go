package http

import (
	"io"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/streamgate/http/status"
	"github.com/indigo-web/streamgate/internal/linebuf"
)

// bodyAssembler moves body bytes from the ingestion buffer into the request. Plain bodies are
// taken as is, up to the declared length. Chunked bodies are decoded on the fly, so the
// request always holds the payload only.
type bodyAssembler struct {
	maxSize int64
	// remaining is the amount of bytes the plain body still lacks. Negative for chunked
	remaining int64
	trailer   bool
	chunked   *chunkedbody.Parser
}

func newBodyAssembler(maxSize int64) bodyAssembler {
	return bodyAssembler{
		maxSize: maxSize,
	}
}

// reset prepares the assembler for a new body. Negative length stands for the chunked
// transfer coding.
func (b *bodyAssembler) reset(length int64, trailer bool) {
	b.remaining = length
	b.trailer = trailer
	if length < 0 {
		b.chunked = chunkedbody.NewParser(chunkedbody.DefaultSettings())
	}
}

// feed consumes as much body bytes from the buffer as the current message is allowed to have.
// Returns true when the body is complete.
func (b *bodyAssembler) feed(request *Request, buff *linebuf.Accumulator) (done bool, err error) {
	if b.remaining < 0 {
		return b.feedChunked(request, buff)
	}

	data := buff.Remainder()
	if int64(len(data)) > b.remaining {
		data = data[:b.remaining]
	}

	// the body grows with the data actually received, never with the declared length
	if len(data) > 0 {
		request.body = append(request.body, data...)
		buff.Consume(len(data))
		b.remaining -= int64(len(data))
	}

	return b.remaining == 0, nil
}

func (b *bodyAssembler) feedChunked(request *Request, buff *linebuf.Accumulator) (done bool, err error) {
	for buff.Len() > 0 {
		data := buff.Remainder()
		chunk, extra, err := b.chunked.Parse(data, b.trailer)
		switch err {
		case nil, io.EOF:
		default:
			return false, status.ErrBadChunk
		}

		if int64(len(request.body)+len(chunk)) > b.maxSize {
			return false, status.ErrBodyTooLarge
		}

		if len(chunk) > 0 {
			request.body = append(request.body, chunk...)
			request.contentLength = int64(len(request.body))
		}

		consumed := len(data) - len(extra)
		buff.Consume(consumed)

		if err == io.EOF {
			return true, nil
		}

		if consumed == 0 && len(chunk) == 0 {
			break
		}
	}

	return false, nil
}
