package ul

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Conn wraps a net.Conn with the PDU-level read/write operations an
// association needs: deadline-bounded, context-cancellation-aware PDU
// exchange. Per-read deadlines, not a single connection-wide deadline,
// so a slow peer mid-PDU times out without tearing down an otherwise
// healthy association between PDUs.
type Conn struct {
	nc         net.Conn
	maxlen     uint32
	strict     bool
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps nc for PDU exchange. maxlen bounds a read PDU's
// declared body length (0 defers to ReadPDU's default under strict
// mode); readTimeout/writeTimeout of 0 disable the corresponding
// deadline.
func NewConn(nc net.Conn, maxlen uint32, strict bool, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{nc: nc, maxlen: maxlen, strict: strict, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// ReadPDU reads and decodes the next PDU, honoring both ctx
// cancellation and the configured read deadline. Exceeding either closes
// the underlying connection (per spec: a PDU read failure aborts the
// association) and returns the timeout/cancellation error.
func (c *Conn) ReadPDU(ctx context.Context) (PDU, error) {
	if c.readTimeout > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, fmt.Errorf("ul: set read deadline: %w", err)
		}
		defer c.nc.SetReadDeadline(time.Time{})
	}

	type result struct {
		pdu PDU
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := ReadPDU(c.nc, c.maxlen, c.strict)
		done <- result{p, err}
	}()

	select {
	case <-ctx.Done():
		c.nc.Close()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			var ne net.Error
			if errors.As(r.err, &ne) && ne.Timeout() {
				c.nc.Close()
			}
			return nil, r.err
		}
		return r.pdu, nil
	}
}

// WritePDU encodes and writes p, honoring the configured write deadline.
func (c *Conn) WritePDU(p PDU) error {
	if c.writeTimeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("ul: set write deadline: %w", err)
		}
		defer c.nc.SetWriteDeadline(time.Time{})
	}
	return p.Encode(c.nc)
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }
