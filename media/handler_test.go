package media

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/indigo-web/streamgate/config"
	"github.com/indigo-web/streamgate/http"
	"github.com/indigo-web/streamgate/internal/server"
	"github.com/indigo-web/streamgate/transport/dummy"
	json "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func serve(handler *Handler, requests ...string) *dummy.Client {
	chunks := make([][]byte, len(requests))
	for i, request := range requests {
		chunks[i] = []byte(request)
	}

	client := dummy.NewClient(chunks...)
	server.New(config.Default(), handler, zerolog.Nop()).Run(client)

	return client
}

func statusLines(written string) (lines []string) {
	for _, line := range strings.Split(written, "\r\n") {
		if strings.HasPrefix(line, "HTTP/1.1 ") {
			lines = append(lines, line)
		}
	}

	return lines
}

func TestHandler(t *testing.T) {
	t.Run("publish", func(t *testing.T) {
		observer := new(events)
		logs := new(bytes.Buffer)
		handler := NewHandler(NewRegistry(observer, LogObserver{Logger: zerolog.New(logs)}), zerolog.Nop())
		body := `{"content_type":"video/mp2t","bitrate":4000}`

		client := serve(handler,
			"PUT /streams/cam-1 HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: 44\r\n\r\n"+body,
			"POST /streams/cam-1 HTTP/1.1\r\nContent-Length: 5\r\n\r\nframe",
			"PUT /streams/cam-1 HTTP/1.1\r\n\r\n",
			"GET /streams/missing HTTP/1.1\r\n\r\n",
			"PATCH /streams/cam-1 HTTP/1.1\r\n\r\n",
			"GET /other HTTP/1.1\r\n\r\n",
		)

		require.Equal(t, []string{
			"HTTP/1.1 201 Created",
			"HTTP/1.1 204 No Content",
			"HTTP/1.1 409 Conflict",
			"HTTP/1.1 404 Not Found",
			"HTTP/1.1 405 Method Not Allowed",
			"HTTP/1.1 404 Not Found",
		}, statusLines(client.Written()))
		require.Equal(t, []string{"cam-1#0:frame"}, observer.frames)
		// the connection is closed, so are its streams
		require.Equal(t, []string{"cam-1"}, observer.deleted)
		require.Zero(t, handler.registry.Len())
		require.Contains(t, logs.String(), "stream created")
		require.Contains(t, logs.String(), `"content_type":"video/mp2t"`)
	})

	t.Run("stats", func(t *testing.T) {
		handler := NewHandler(NewRegistry(), zerolog.Nop())
		_, err := handler.registry.Create(Stream{Name: "cam-2", Publisher: "someone", ContentType: "video/mp4"})
		require.NoError(t, err)

		client := serve(handler, "GET /streams/cam-2?verbose=1 HTTP/1.1\r\n\r\n")
		written := client.Written()
		require.True(t, strings.HasPrefix(written, "HTTP/1.1 200 OK\r\n"))
		require.Contains(t, written, "Content-Type: application/json\r\n")

		var stream Stream
		require.NoError(t, json.ConfigDefault.UnmarshalFromString(written[strings.Index(written, "\r\n\r\n")+4:], &stream))
		require.Equal(t, "cam-2", stream.Name)
		require.Equal(t, "video/mp4", stream.ContentType)
	})

	t.Run("foreign stream", func(t *testing.T) {
		handler := NewHandler(NewRegistry(), zerolog.Nop())
		_, err := handler.registry.Create(Stream{Name: "cam-3", Publisher: "someone"})
		require.NoError(t, err)

		client := serve(handler,
			"POST /streams/cam-3 HTTP/1.1\r\nContent-Length: 1\r\n\r\nx",
			"DELETE /streams/cam-3 HTTP/1.1\r\n\r\n",
		)
		require.Equal(t, []string{
			"HTTP/1.1 403 Forbidden",
			"HTTP/1.1 403 Forbidden",
		}, statusLines(client.Written()))
		require.Equal(t, 1, handler.registry.Len())
	})

	t.Run("bad description", func(t *testing.T) {
		handler := NewHandler(NewRegistry(), zerolog.Nop())
		client := serve(handler,
			"PUT /streams/a HTTP/1.1\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\n{}",
			"PUT /streams/b HTTP/1.1\r\nContent-Length: 3\r\n\r\n{x}",
		)
		require.Equal(t, []string{
			"HTTP/1.1 415 Unsupported Media Type",
			"HTTP/1.1 400 Bad Request",
		}, statusLines(client.Written()))
	})
}

func TestSession(t *testing.T) {
	request := http.NewRequest(config.Default(), dummy.NewNopClient(), nil)
	session := SessionOf(request)
	require.NotEmpty(t, session.ID)
	require.Same(t, session, SessionOf(request))
}

func TestStreamName(t *testing.T) {
	for target, want := range map[string]string{
		"/streams/cam":       "cam",
		"/streams/cam?a=b":   "cam",
		"/streams/":          "",
		"/streams/cam/extra": "",
		"/stream/cam":        "",
	} {
		name, ok := streamName(target)
		require.Equal(t, want, name, target)
		require.Equal(t, want != "", ok, target)
	}
}

func TestCompressedFrame(t *testing.T) {
	var compressed bytes.Buffer
	w := gzip.NewWriter(&compressed)
	_, err := w.Write([]byte("keyframe"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	observer := new(events)
	handler := NewHandler(NewRegistry(observer), zerolog.Nop())
	client := serve(handler,
		"PUT /streams/cam HTTP/1.1\r\n\r\n",
		"POST /streams/cam HTTP/1.1\r\nContent-Encoding: gzip\r\nContent-Length: "+strconv.Itoa(compressed.Len())+"\r\n\r\n"+compressed.String(),
		"POST /streams/cam HTTP/1.1\r\nContent-Encoding: br\r\nContent-Length: 2\r\n\r\nxx",
	)

	require.Equal(t, []string{
		"HTTP/1.1 201 Created",
		"HTTP/1.1 204 No Content",
		"HTTP/1.1 415 Unsupported Media Type",
	}, statusLines(client.Written()))
	require.Equal(t, []string{"cam#0:keyframe"}, observer.frames)
}
