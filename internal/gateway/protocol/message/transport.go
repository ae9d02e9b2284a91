package message

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
)

// Exchanger sends one request to a bank endpoint and returns its answer.
type Exchanger interface {
	Exchange(ctx context.Context, endpoint string, req *iso8583.Message) (*iso8583.Message, error)
}

// Dialer keeps one TCP connection per bank endpoint, opened on first use.
// Dials happen outside the lock and honour the caller's context.
type Dialer struct {
	Timeout time.Duration

	dial  func(ctx context.Context, endpoint string) (net.Conn, error)
	mu    sync.Mutex
	conns map[string]*connection.Connection
}

func NewDialer(timeout time.Duration) *Dialer {
	nd := &net.Dialer{Timeout: timeout}
	return &Dialer{
		Timeout: timeout,
		dial: func(ctx context.Context, endpoint string) (net.Conn, error) {
			return nd.DialContext(ctx, "tcp", endpoint)
		},
		conns: make(map[string]*connection.Connection),
	}
}

func (d *Dialer) Exchange(ctx context.Context, endpoint string, req *iso8583.Message) (*iso8583.Message, error) {
	conn, err := d.conn(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	type answer struct {
		msg *iso8583.Message
		err error
	}
	done := make(chan answer, 1)
	go func() {
		msg, err := conn.Send(req)
		done <- answer{msg, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case a := <-done:
		if a.err != nil {
			d.drop(endpoint, conn)
			return nil, fmt.Errorf("message: send to %s: %w", endpoint, a.err)
		}
		return a.msg, nil
	}
}

func (d *Dialer) conn(ctx context.Context, endpoint string) (*connection.Connection, error) {
	d.mu.Lock()
	c, ok := d.conns[endpoint]
	d.mu.Unlock()
	if ok {
		return c, nil
	}

	raw, err := d.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("message: connect to %s: %w", endpoint, err)
	}
	c, err = connection.NewFrom(raw, iso8583.Spec87, readLength, writeLength,
		connection.SendTimeout(d.Timeout),
	)
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("message: connection to %s: %w", endpoint, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// Another caller may have connected while we dialed.
	if existing, ok := d.conns[endpoint]; ok {
		_ = c.Close()
		return existing, nil
	}
	d.conns[endpoint] = c
	return c, nil
}

// drop closes a failed connection so the next call redials.
func (d *Dialer) drop(endpoint string, c *connection.Connection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conns[endpoint] == c {
		delete(d.conns, endpoint)
		_ = c.Close()
	}
}

// Close closes every open connection.
func (d *Dialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for endpoint, c := range d.conns {
		_ = c.Close()
		delete(d.conns, endpoint)
	}
	return nil
}

// Messages are framed by a two byte big-endian length header.
func readLength(r io.Reader) (int, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(header[:])), nil
}

func writeLength(w io.Writer, length int) (int, error) {
	var header [2]byte
	binary.BigEndian.PutUint16(header[:], uint16(length))
	return w.Write(header[:])
}
