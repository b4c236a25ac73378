package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/streamgate/transport"
)

var _ transport.Client = new(Client)

// Client returns the pre-defined chunks one by one, returning io.EOF after the last one.
// Everything written is collected in the underlying Conn.
type Client struct {
	data    [][]byte
	pending []byte
	pointer int
	looped  bool
	conn    *Conn
}

func NewClient(data ...[]byte) *Client {
	return &Client{
		data: data,
		conn: NewConn(),
	}
}

// Loop makes the client start over instead of returning io.EOF. Used mainly for benchmarking.
func (c *Client) Loop() *Client {
	c.looped = true
	return c
}

func (c *Client) Read() (data []byte, err error) {
	if c.conn.closed {
		return nil, io.EOF
	}

	if len(c.pending) > 0 {
		data, c.pending = c.pending, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if !c.looped || len(c.data) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.pending = append([]byte(nil), takeback...)
}

func (c *Client) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Written returns everything that was written into the client.
func (c *Client) Written() string {
	return string(c.conn.Data)
}

func (c *Client) Conn() net.Conn {
	return c.conn
}

func (c *Client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Closed() bool {
	return c.conn.Closed()
}

func NewNopClient() *Client {
	return NewClient()
}
