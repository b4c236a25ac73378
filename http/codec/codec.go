package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrTooLarge      = errors.New("decoded data exceeds the limit")
	ErrUnknownCoding = errors.New("unknown content coding")
)

type readerConstructor func(r io.Reader) (io.ReadCloser, error)

// Codec removes a single content coding.
type Codec struct {
	token     string
	newReader readerConstructor
}

func NewGZIP() Codec {
	return Codec{
		token: "gzip",
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	}
}

func NewDeflate() Codec {
	return Codec{
		token: "deflate",
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return flate.NewReader(r), nil
		},
	}
}

func NewZSTD() Codec {
	return Codec{
		token: "zstd",
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}

			return decoder.IOReadCloser(), nil
		},
	}
}

func (c Codec) Token() string {
	return c.token
}

// Decode returns decoded data. If it's longer than the limit, ErrTooLarge is returned.
func (c Codec) Decode(data []byte, limit int64) ([]byte, error) {
	reader, err := c.newReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	decoded, err := io.ReadAll(io.LimitReader(reader, limit+1))
	_ = reader.Close()
	if err != nil {
		return nil, err
	}

	if int64(len(decoded)) > limit {
		return nil, ErrTooLarge
	}

	return decoded, nil
}

// Suit is a set of supported codecs.
type Suit []Codec

func Default() Suit {
	return Suit{NewGZIP(), NewDeflate(), NewZSTD()}
}

// Get returns the codec by its token, case-insensitively.
func (s Suit) Get(token string) (Codec, bool) {
	for _, codec := range s {
		if strcomp.EqualFold(codec.token, token) {
			return codec, true
		}
	}

	return Codec{}, false
}

// Decode removes all the codings, listed in the Content-Encoding header value. Codings are
// removed in the reverse order of their application. Identity coding is skipped.
func (s Suit) Decode(contentEncoding string, data []byte, limit int64) ([]byte, error) {
	codings := strings.Split(contentEncoding, ",")

	for i := len(codings) - 1; i >= 0; i-- {
		token := strings.TrimSpace(codings[i])
		if len(token) == 0 || strcomp.EqualFold(token, "identity") {
			continue
		}

		codec, found := s.Get(token)
		if !found {
			return nil, ErrUnknownCoding
		}

		var err error
		if data, err = codec.Decode(data, limit); err != nil {
			return nil, err
		}
	}

	return data, nil
}
