package simproto

import (
	"context"
	"net"

	"zombiezen.com/go/capnproto2/rpc"
)

// Conn wraps a live two-party Cap'n Proto connection to a simulator
// server: the bootstrap capability, cast to the requested interface, and
// the underlying RPC connection whose Close tears down both pumps.
type Conn struct {
	rpcConn *rpc.Conn
	Sim     Simulator
}

// Dial opens a TCP connection to addr and casts the bootstrap capability
// to the Simulator interface. The caller selects which concrete
// interface (Ngspice, Xyce, Cxxrtl) it represents out of band; all three
// share this wire shape.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	nc, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	transport := rpc.NewStreamTransport(nc)
	conn := rpc.NewConn(transport)
	client := conn.Bootstrap(ctx)
	if err := client.Resolve(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &Conn{rpcConn: conn, Sim: Simulator{Client: client}}, nil
}

// Close tears down the underlying RPC connection and its socket pumps.
func (c *Conn) Close() error {
	return c.rpcConn.Close()
}
