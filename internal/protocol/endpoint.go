package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// handshakeTimeout bounds how long a freshly connected client may take
// to send its profile.
const handshakeTimeout = 10 * time.Second

// ErrVersionMismatch reports a client speaking a different protocol
// version.
var ErrVersionMismatch = errors.New("protocol version mismatch")

// Endpoint frames tables over one client connection. Writes and reads
// on an endpoint are issued from a single coordinator flow; the
// endpoint itself adds no locking.
type Endpoint struct {
	conn net.Conn
	seat int
	name string
	log  *zap.Logger
}

// NewEndpoint wraps an accepted connection for the given seat.
func NewEndpoint(conn net.Conn, seat int, logger *zap.Logger) *Endpoint {
	return &Endpoint{
		conn: conn,
		seat: seat,
		name: fmt.Sprintf("Player%d", seat),
		log:  logger,
	}
}

// Seat returns the seat this endpoint is bound to.
func (e *Endpoint) Seat() int {
	return e.seat
}

// Name returns the client name learned during the handshake.
func (e *Endpoint) Name() string {
	return e.name
}

// RemoteAddr exposes the peer address for logging.
func (e *Endpoint) RemoteAddr() net.Addr {
	return e.conn.RemoteAddr()
}

// Handshake announces the protocol version and assigned seat, then
// reads the client profile. A version other than ours fails the
// handshake.
func (e *Endpoint) Handshake() error {
	hello := HelloTable(e.seat)
	if err := e.WriteTable(hello); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	profile, err := e.ReadTable(handshakeTimeout)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	version, name := ParseProfile(profile)
	if version != Version {
		return fmt.Errorf("%w: client sent %d, server speaks %d",
			ErrVersionMismatch, version, Version)
	}
	if name != "" {
		e.name = name
	}
	e.log.Debug("handshake complete",
		zap.Int("seat", e.seat),
		zap.String("name", e.name),
	)
	return nil
}

// WriteTable sends one frame.
func (e *Endpoint) WriteTable(t Table) error {
	if _, err := e.conn.Write(t.Encode()); err != nil {
		return fmt.Errorf("seat %d write: %w", e.seat, err)
	}
	return nil
}

// ReadTable receives exactly one frame. A non-zero timeout arms a read
// deadline; callers distinguish timeouts with
// errors.Is(err, os.ErrDeadlineExceeded).
func (e *Endpoint) ReadTable(timeout time.Duration) (Table, error) {
	if timeout > 0 {
		if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return Table{}, fmt.Errorf("seat %d deadline: %w", e.seat, err)
		}
		defer e.conn.SetReadDeadline(time.Time{})
	}

	buf := make([]byte, FrameBytes)
	if _, err := io.ReadFull(e.conn, buf); err != nil {
		return Table{}, fmt.Errorf("seat %d read: %w", e.seat, err)
	}
	return Decode(buf)
}

// Close tears the connection down.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}
