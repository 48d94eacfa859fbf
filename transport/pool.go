// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/mcrouter-go/mcrouter"
)

// ErrNotConnected is returned by [Pool.Send] when the pool has no live (or
// freshly dialable) connection to the upstream. [route.Destination]
// synthesizes [mcroute.ConnectError] from this without blocking further.
var ErrNotConnected = errors.New("transport: not connected")

// Pool is the external collaborator a [route.Destination] forwards
// requests through. The routing core only depends on this interface; how a
// pool discovers, dials, and recycles connections is out of scope for the
// routing core itself (see the package-level design notes).
type Pool interface {
	// Send delivers req to the upstream this pool represents and returns
	// its reply. Send returns [ErrNotConnected] (never a reply and an
	// error together) when no connection to the upstream can be
	// established.
	Send(ctx context.Context, req mcroute.Request, op mcroute.Op) (mcroute.Reply, error)
}

// Coder encodes a [mcroute.Request] onto a connection and decodes the
// matching [mcroute.Reply], i.e. the memcached wire protocol itself. The
// routing core treats the wire format as an external collaborator;
// [DialPool] depends on this interface so the routing core never needs to
// know the wire format to exercise a [Pool].
type Coder interface {
	Encode(conn net.Conn, req mcroute.Request, op mcroute.Op) error
	Decode(conn net.Conn, op mcroute.Op) (mcroute.Reply, error)
}

// DialPool is a [Pool] backed by a single upstream address, built from the
// teacher's dial/observe/cancel-watch [mcroute.Func] pipeline: Connect,
// ObserveConn, CancelWatch, optionally TLSHandshake, then Coder.Encode +
// Coder.Decode. Connections are not pooled across requests in this
// minimal implementation; each [Send] dials fresh and closes on return,
// leaving connection reuse and health tracking to a production pool.
type DialPool struct {
	// Address is the upstream this pool dials.
	Address netip.AddrPort

	// Dialer is the [Dialer] used by the connect step.
	Dialer Dialer

	// TLSConfig enables a TLS handshake after connecting when non-nil.
	TLSConfig *tls.Config

	// Coder encodes/decodes the memcached wire protocol.
	Coder Coder

	// Logger is the [mcroute.SLogger] shared by every pipeline stage.
	Logger mcroute.SLogger

	// ErrClassifier classifies dial/handshake/I-O errors.
	ErrClassifier mcroute.ErrClassifier

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time

	// Network is "tcp" or "unix". Defaults to "tcp".
	Network string

	mu        sync.Mutex
	connected bool
}

// NewDialPool returns a [*DialPool] wired to cfg's defaults, dialing addr
// over network ("tcp" or "unix") via dialer, decoding replies with coder.
// Pass a non-nil tlsConfig to require TLS on every connection.
func NewDialPool(
	cfg *mcroute.Config, dialer Dialer, addr netip.AddrPort,
	network string, coder Coder, tlsConfig *tls.Config, logger mcroute.SLogger) *DialPool {
	return &DialPool{
		Address:       addr,
		Dialer:        dialer,
		TLSConfig:     tlsConfig,
		Coder:         coder,
		Logger:        logger,
		ErrClassifier: cfg.ErrClassifier,
		TimeNow:       cfg.TimeNow,
		Network:       network,
		connected:     true,
	}
}

// MarkNotConnected makes every subsequent [Send] fail fast with
// [ErrNotConnected] without attempting a dial, modeling a pool that has
// given up on a TKO'd upstream. MarkConnected reverses this.
func (p *DialPool) MarkNotConnected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
}

// MarkConnected reverses [DialPool.MarkNotConnected].
func (p *DialPool) MarkConnected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
}

func (p *DialPool) isConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

var _ Pool = &DialPool{}

// Send implements [Pool].
func (p *DialPool) Send(ctx context.Context, req mcroute.Request, op mcroute.Op) (mcroute.Reply, error) {
	if !p.isConnected() {
		return mcroute.Reply{}, ErrNotConnected
	}

	conn, err := p.dial(ctx)
	if err != nil {
		return mcroute.Reply{}, err
	}
	defer conn.Close()

	if err := p.Coder.Encode(conn, req, op); err != nil {
		return mcroute.Reply{}, err
	}
	return p.Coder.Decode(conn, op)
}

func (p *DialPool) dial(ctx context.Context) (net.Conn, error) {
	network := p.Network
	if network == "" {
		network = "tcp"
	}

	connectFn := NewConnectFunc(&mcroute.Config{ErrClassifier: p.ErrClassifier, TimeNow: p.TimeNow}, p.Dialer, network, p.Logger)
	observeFn := NewObserveConnFunc(&mcroute.Config{ErrClassifier: p.ErrClassifier, TimeNow: p.TimeNow}, p.Logger)
	cancelFn := NewCancelWatchFunc()

	pipeline := mcroute.Compose3[netip.AddrPort, net.Conn, net.Conn, net.Conn](connectFn, observeFn, cancelFn)
	conn, err := pipeline.Call(ctx, p.Address)
	if err != nil {
		return nil, err
	}

	if p.TLSConfig == nil {
		return conn, nil
	}

	tlsFn := NewTLSHandshakeFunc(&mcroute.Config{ErrClassifier: p.ErrClassifier, TimeNow: p.TimeNow}, p.TLSConfig, p.Logger)
	tconn, err := tlsFn.Call(ctx, conn)
	if err != nil {
		return nil, err
	}
	return tconn, nil
}
