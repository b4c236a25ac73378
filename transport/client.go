package transport

import (
	"net"
	"time"
)

// Client is a connection as it is seen by the ingestion loop: a source of arbitrarily-sized
// chunks and a sink for the responses. Reads are always driven by a single goroutine.
type Client interface {
	Read() ([]byte, error)
	Pushback([]byte)
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	pending []byte
	// err is reported by the next Read, if the previous one returned data along with it
	err     error
	timeout time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff,
		conn:    conn,
		timeout: timeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. Timeouts are also
// handled automatically. The returned slice is valid until the next call. If the data comes
// along with an error, the data is returned first and the error is reported on the next call.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.err != nil {
		return nil, c.err
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	if n > 0 && err != nil {
		c.err = err
		return c.buff[:n], nil
	}

	return c.buff[:n], err
}

// Pushback preserves a chunk of data from previous read for the next read. The data is copied,
// as the read buffer is going to be overridden.
func (c *client) Pushback(b []byte) {
	if len(b) == 0 {
		return
	}

	c.pending = append(c.pending[:0:0], b...)
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Write writes data into the underlying connection.
func (c *client) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
