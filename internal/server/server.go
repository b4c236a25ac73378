package server

import (
	"errors"
	"io"
	"os"

	"github.com/indigo-web/streamgate/config"
	"github.com/indigo-web/streamgate/http"
	"github.com/indigo-web/streamgate/http/status"
	"github.com/indigo-web/streamgate/transport"
	"github.com/rs/zerolog"
)

// Server drives a single connection: reads the data, feeds it into the request and passes
// completed requests to the handler, for as long as the connection may be kept alive.
type Server struct {
	cfg     *config.Config
	handler http.Handler
	logger  zerolog.Logger
}

func New(cfg *config.Config, handler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Run serves the client until the connection is no longer usable and closes it afterwards.
func (s *Server) Run(client transport.Client) {
	request := http.NewRequest(s.cfg, client, s.handler)

	for s.HandleRequest(client, request) {
	}

	if disconnector, ok := request.Handler().(http.Disconnector); ok {
		disconnector.OnDisconnect(request)
	}

	_ = client.Close()
}

// HandleRequest performs a single read and processes it. Returns false when the connection
// must be closed.
func (s *Server) HandleRequest(client transport.Client, request *http.Request) (ok bool) {
	data, err := client.Read()
	if err != nil {
		s.onReadError(client, err)
		return false
	}

	_, err = request.ProcessData(data)

	switch code := request.ParseStatus(); code {
	case http.NeedMoreData:
		return true
	case http.Complete:
		client.Pushback(request.Leftover())

		if err = request.Handler().OnRequest(request); err != nil {
			s.logger.Debug().
				Stringer("remote", client.Remote()).
				Err(err).
				Msg("handler requested to close the connection")

			return false
		}

		keepAlive := request.KeepAlive()
		request.Reset()

		return keepAlive
	default:
		if errors.Is(err, http.ErrFatal) {
			s.logger.Error().
				Stringer("remote", client.Remote()).
				Err(err).
				Msg("request ingestion failed")
		} else {
			s.logger.Warn().
				Stringer("remote", client.Remote()).
				Uint16("status", uint16(code)).
				Err(err).
				Msg("malformed request")

			s.respondError(client, code)
		}

		request.Handler().OnError(request, err)

		return false
	}
}

func (s *Server) onReadError(client transport.Client, err error) {
	switch {
	case errors.Is(err, io.EOF):
	case errors.Is(err, os.ErrDeadlineExceeded):
		s.logger.Debug().
			Stringer("remote", client.Remote()).
			Msg("closing idle connection")
	default:
		s.logger.Warn().
			Stringer("remote", client.Remote()).
			Err(err).
			Msg("read failed")
	}
}

func (s *Server) respondError(client transport.Client, code status.Code) {
	if !code.IsError() {
		return
	}

	if err := http.WriteStatus(client, code, false); err != nil {
		s.logger.Debug().
			Stringer("remote", client.Remote()).
			Err(err).
			Msg("failed to write the error response")
	}
}
