package transport

import (
	"net"

	"github.com/indigo-web/streamgate/config"
)

// Transport accepts connections and hands each of them over to the callback, running in
// its own goroutine.
type Transport interface {
	Bind(addr string) error
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Addr() net.Addr
	Stop()
	Close()
	Wait()
}
