package streamgate

import (
	"errors"
	"net"
	"os"
	"sync"

	"github.com/indigo-web/streamgate/config"
	"github.com/indigo-web/streamgate/http"
	"github.com/indigo-web/streamgate/internal/server"
	"github.com/indigo-web/streamgate/transport"
	"github.com/rs/zerolog"
)

var ErrNoHandler = errors.New("streamgate: no handler")

// App accepts the connections and runs an ingestion loop for each of them.
type App struct {
	addr      string
	cfg       *config.Config
	logger    zerolog.Logger
	hooks     hooks
	transport *transport.TCP
	stop      chan struct{}
	stopOnce  sync.Once
}

// New returns a new App instance, which is going to listen on the address.
func New(addr string) *App {
	return &App{
		addr:      addr,
		cfg:       config.Default(),
		logger:    zerolog.New(os.Stderr).With().Timestamp().Logger(),
		transport: transport.NewTCP(),
		stop:      make(chan struct{}),
	}
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger, writing into stderr.
func (a *App) Logger(logger zerolog.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback at the moment, when the listener is bound and the accept
// loop is about to start.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when no new connections are accepted and
// all the clients are already disconnected.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the address the App is listening on. It is nil until the App is started.
func (a *App) Addr() net.Addr {
	return a.transport.Addr()
}

// Serve starts the application and blocks until it is stopped or the listener fails.
func (a *App) Serve(handler http.Handler) error {
	if handler == nil {
		return ErrNoHandler
	}

	if err := a.transport.Bind(a.addr); err != nil {
		return err
	}

	srv := server.New(a.cfg, handler, a.logger)
	listenErr := make(chan error, 1)

	go func() {
		listenErr <- a.transport.Listen(a.cfg.NET, func(conn net.Conn) {
			client := transport.NewClient(conn, a.cfg.NET.ReadTimeout, make([]byte, a.cfg.NET.ReadBufferSize))
			srv.Run(client)
		})
	}()

	a.logger.Info().Stringer("addr", a.transport.Addr()).Msg("listening")
	callIfNotNil(a.hooks.OnStart)

	var err error
	select {
	case err = <-listenErr:
		a.logger.Error().Err(err).Msg("accept loop failed")
	case <-a.stop:
		a.transport.Stop()
		a.transport.Close()
		err = <-listenErr
	}

	a.transport.Close()
	a.transport.Wait()
	a.logger.Info().Msg("stopped")
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop stops accepting new connections. Connections being served are kept until they are
// closed by either side or idle out.
//
// NOTE: the call isn't blocking. Serve returns as soon as the application is actually down.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
