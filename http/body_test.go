package http

import (
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/streamgate/config"
	"github.com/indigo-web/streamgate/http/status"
	"github.com/stretchr/testify/require"
)

func TestChunkedBody(t *testing.T) {
	const chunked = "POST /upload HTTP/1.1\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"4\r\nWiki\r\n" +
		"5\r\npedia\r\n" +
		"0\r\n\r\n"

	t.Run("whole", func(t *testing.T) {
		r := getRequest()
		n, err := r.ProcessData([]byte(chunked))
		require.NoError(t, err)
		require.Equal(t, len(chunked), n)
		require.Equal(t, Complete, r.ParseStatus())
		require.Equal(t, "Wikipedia", string(r.Body()))
		require.Equal(t, int64(len("Wikipedia")), r.ContentLength())
	})

	t.Run("partially", func(t *testing.T) {
		for i := 1; i < len(chunked); i++ {
			r := getRequest()
			_, err := feedPartially(r, []byte(chunked), i)
			require.NoError(t, err, i)
			require.Equal(t, Complete, r.ParseStatus(), i)
			require.Equal(t, "Wikipedia", string(r.Body()), i)
		}
	})

	t.Run("chunked wins over content length", func(t *testing.T) {
		raw := strings.Replace(chunked, "\r\n\r\n", "\r\nContent-Length: 100\r\n\r\n", 1)
		r := getRequest()
		_, err := r.ProcessData([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, Complete, r.ParseStatus())
		require.Equal(t, "Wikipedia", string(r.Body()))
	})

	t.Run("pipelined", func(t *testing.T) {
		next := "GET / HTTP/1.1\r\n\r\n"
		r := getRequest()
		n, err := r.ProcessData([]byte(chunked + next))
		require.NoError(t, err)
		require.Equal(t, len(chunked), n)
		require.Equal(t, next, string(r.Leftover()))
	})

	t.Run("stacked codings", func(t *testing.T) {
		raw := strings.Replace(chunked, "chunked", "gzip, chunked", 1)
		r := getRequest()
		_, err := r.ProcessData([]byte(raw))
		require.NoError(t, err)
		require.Equal(t, "Wikipedia", string(r.Body()))
	})

	t.Run("chunked is not final", func(t *testing.T) {
		raw := strings.Replace(chunked, "chunked", "chunked, gzip", 1)
		r := getRequest()
		_, err := r.ProcessData([]byte(raw))
		require.ErrorIs(t, err, status.ErrBadEncoding)
		require.Equal(t, status.BadRequest, r.ParseStatus())
	})

	t.Run("malformed chunk", func(t *testing.T) {
		r := getRequest()
		_, err := r.ProcessData([]byte("POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\nxyz\r\n"))
		require.ErrorIs(t, err, status.ErrBadChunk)
		require.Equal(t, status.BadRequest, r.ParseStatus())
	})

	t.Run("too large", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 8

		r := getRequestWithConfig(cfg)
		_, err := r.ProcessData([]byte(chunked))
		require.ErrorIs(t, err, status.ErrBodyTooLarge)
		require.Equal(t, status.RequestEntityTooLarge, r.ParseStatus())
	})
}

func TestPlainBody(t *testing.T) {
	payload := uniuri.NewLen(4096)
	raw := []byte("POST /segments HTTP/1.1\r\nContent-Length: 4096\r\n\r\n" + payload)

	for _, n := range []int{1, 7, 100, 1024, len(raw)} {
		r := getRequest()
		consumed, err := feedPartially(r, raw, n)
		require.NoError(t, err)
		require.Equal(t, len(raw), consumed)
		require.Equal(t, Complete, r.ParseStatus())
		require.Equal(t, payload, string(r.Body()))
		require.Equal(t, int64(len(payload)), r.ContentLength())
	}
}

func TestManyHeaders(t *testing.T) {
	var (
		names []string
		raw   strings.Builder
	)

	raw.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < 20; i++ {
		name := "X-" + uniuri.NewLen(12)
		names = append(names, name)
		raw.WriteString(name + ": " + name + "\r\n")
	}
	raw.WriteString("\r\n")

	r := getRequest()
	_, err := feedPartially(r, []byte(raw.String()), 5)
	require.NoError(t, err)
	require.Equal(t, Complete, r.ParseStatus())
	require.Equal(t, len(names), r.Headers().Len())

	for _, name := range names {
		require.Equal(t, name, r.Header(strings.ToLower(name)))
		require.Equal(t, name, r.Header(strings.ToUpper(name)))
	}
}

func TestDuplicateHeaders(t *testing.T) {
	r := getRequest()
	_, err := r.ProcessData([]byte("GET / HTTP/1.1\r\nAccept: text/html\r\nX-A: 1\r\naccept: application/json\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, 2, r.Headers().Len())
	require.Equal(t, "application/json", r.Header("ACCEPT"))
	require.Equal(t, []string{"accept", "X-A"}, r.Headers().Keys())
}
