// Package server coordinates one five-seat UECda session over TCP:
// accepting connections, binding seats, fanning out broadcasts, and
// serializing turn interactions with the match engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uecda/uecda-server-go/internal/config"
	"github.com/uecda/uecda-server-go/internal/game"
	"github.com/uecda/uecda-server-go/internal/game/rules"
	"github.com/uecda/uecda-server-go/internal/journal"
	"github.com/uecda/uecda-server-go/internal/protocol"
)

// Coordinator owns the listener and the five client endpoints. It
// implements game.Transport: the engine decides, the coordinator moves
// frames.
type Coordinator struct {
	cfg       *config.Config
	log       *zap.Logger
	ln        net.Listener
	sessionID uuid.UUID
	endpoints [game.NumSeats]*protocol.Endpoint
}

// New binds the listener. A bind failure is fatal to the process.
func New(cfg *config.Config, logger *zap.Logger) (*Coordinator, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	c := &Coordinator{
		cfg:       cfg,
		log:       logger,
		ln:        ln,
		sessionID: uuid.New(),
	}
	logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("session", c.sessionID.String()),
	)
	return c, nil
}

// Addr returns the bound listener address.
func (c *Coordinator) Addr() net.Addr {
	return c.ln.Addr()
}

// SessionID returns the identifier stamped into logs and the journal.
func (c *Coordinator) SessionID() string {
	return c.sessionID.String()
}

// AcceptPlayers waits for exactly five connections, assigning seats in
// connection order and handshaking each. A failed handshake aborts the
// session.
func (c *Coordinator) AcceptPlayers(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.ln.Close()
		case <-done:
		}
	}()

	for seat := 0; seat < game.NumSeats; seat++ {
		c.log.Info("waiting for player", zap.Int("seat", seat))
		conn, err := c.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept seat %d: %w", seat, err)
		}
		ep := protocol.NewEndpoint(conn, seat, c.log)
		if err := ep.Handshake(); err != nil {
			ep.Close()
			return fmt.Errorf("handshake seat %d: %w", seat, err)
		}
		c.endpoints[seat] = ep
		c.log.Info("player connected",
			zap.Int("seat", seat),
			zap.String("name", ep.Name()),
			zap.String("addr", ep.RemoteAddr().String()),
		)
	}
	return nil
}

// PlayerNames returns the handshaken names in seat order.
func (c *Coordinator) PlayerNames() [game.NumSeats]string {
	var names [game.NumSeats]string
	for seat, ep := range c.endpoints {
		if ep != nil {
			names[seat] = ep.Name()
		}
	}
	return names
}

// RunSession drives the engine over the connected seats. Cancellation
// closes every socket so in-flight reads and writes fail fast.
func (c *Coordinator) RunSession(ctx context.Context, jw *journal.Writer) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.closeEndpoints()
		case <-done:
		}
	}()

	opts := game.Options{
		SessionID: c.sessionID.String(),
		NumGames:  c.cfg.Game.NumGames,
		Seed:      c.cfg.Game.Seed,
		Rules:     rulesFromConfig(c.cfg.Rules),
		ShowHands: c.cfg.Logging.ShowHands,
	}
	eng := game.NewEngine(opts, c.PlayerNames(), c, jw, c.log)
	if err := eng.RunSession(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Query implements game.Transport. A turn deadline converts a slow
// seat into a forced pass; every other failure aborts the session.
func (c *Coordinator) Query(ctx context.Context, seat int, t protocol.Table) (protocol.Table, error) {
	ep := c.endpoints[seat]
	if err := ep.WriteTable(t); err != nil {
		return protocol.Table{}, err
	}
	reply, err := ep.ReadTable(c.cfg.Server.TurnTimeout)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			c.log.Warn("turn timed out, forcing pass",
				zap.Int("seat", seat),
				zap.Duration("timeout", c.cfg.Server.TurnTimeout),
			)
			return protocol.Table{}, nil
		}
		return protocol.Table{}, err
	}
	return reply, nil
}

// Broadcast implements game.Transport: the writes start in ascending
// seat order and the call returns only when all five have completed.
func (c *Coordinator) Broadcast(ctx context.Context, frames [game.NumSeats]protocol.Table) error {
	g, _ := errgroup.WithContext(ctx)
	for seat := 0; seat < game.NumSeats; seat++ {
		seat := seat
		g.Go(func() error {
			return c.endpoints[seat].WriteTable(frames[seat])
		})
	}
	return g.Wait()
}

func (c *Coordinator) closeEndpoints() {
	for _, ep := range c.endpoints {
		if ep != nil {
			ep.Close()
		}
	}
}

// Close tears down every connection and the listener.
func (c *Coordinator) Close() error {
	var err error
	for _, ep := range c.endpoints {
		if ep != nil {
			err = multierr.Append(err, ep.Close())
		}
	}
	return multierr.Append(err, c.ln.Close())
}

func rulesFromConfig(rc config.RulesConfig) rules.ActiveRules {
	return rules.ActiveRules{
		Revolution:       rc.Revolution,
		EightCut:         rc.EightCut,
		Lock:             rc.Lock,
		CardExchange:     rc.CardExchange,
		SpadeThreeReturn: rc.SpadeThreeReturn,
		Sennichite:       rc.Sennichite,
		ElevenBack:       rc.ElevenBack,
		FiveSkip:         rc.FiveSkip,
		SixReverse:       rc.SixReverse,
	}
}
