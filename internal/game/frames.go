package game

import (
	"context"

	"github.com/uecda/uecda-server-go/internal/protocol"
)

// meta builds the metadata row shared by every play-phase frame.
func (e *Engine) meta(g int, m *MatchState, activeSeat int, yourTurn bool) protocol.Meta {
	return protocol.Meta{
		Turn:       m.Turn,
		ActiveSeat: activeSeat,
		YourTurn:   yourTurn,
		TrickStart: m.Field.Empty(),
		Revolution: m.Field.Revolution,
		ElevenBack: m.Field.ElevenBack,
		EightCut:   m.Field.EightCut,
		Lock:       m.Field.Lock,
		Game:       g,
		TotalGames: e.session.TotalGames,
	}
}

func (e *Engine) fillSeats(t *protocol.Table, m *MatchState) {
	for seat := 0; seat < NumSeats; seat++ {
		t.SetSeatInfo(seat, protocol.SeatInfo{
			Finished:  m.Finished[seat],
			CardCount: m.Hands[seat].Len(),
			Class:     int(e.session.Classes[seat]),
			Points:    e.session.Points[seat],
		})
	}
}

// queryFrame prompts the active seat: its own hand plus the field
// flags.
func (e *Engine) queryFrame(g int, m *MatchState, seat int) protocol.Table {
	var t protocol.Table
	t.SetMeta(e.meta(g, m, seat, true))
	t.SetCards(m.Hands[seat], protocol.CellCard)
	e.fillSeats(&t, m)
	return t
}

// broadcastTurn tells every seat what the field looks like after a
// play or pass, and who acted.
func (e *Engine) broadcastTurn(ctx context.Context, g int, m *MatchState, played int) error {
	var t protocol.Table
	t.SetMeta(e.meta(g, m, played, false))
	t.SetCards(m.Field.LastCards, protocol.CellCard)
	e.fillSeats(&t, m)

	var frames [NumSeats]protocol.Table
	for seat := range frames {
		frames[seat] = t
	}
	return e.transport.Broadcast(ctx, frames)
}

// sendHandSnapshots delivers each seat its own hand, at the deal and
// after the exchange.
func (e *Engine) sendHandSnapshots(ctx context.Context, g int, m *MatchState) error {
	var frames [NumSeats]protocol.Table
	for seat := range frames {
		var t protocol.Table
		t.SetMeta(e.meta(g, m, m.Active, false))
		t.SetCards(m.Hands[seat], protocol.CellCard)
		e.fillSeats(&t, m)
		frames[seat] = t
	}
	return e.transport.Broadcast(ctx, frames)
}

// sendResultFrame closes out a game with the updated standings; after
// the final game it carries the end-of-session flag.
func (e *Engine) sendResultFrame(ctx context.Context, g int, m *MatchState) error {
	var t protocol.Table
	meta := e.meta(g, m, m.Active, false)
	meta.SessionEnd = g == e.session.TotalGames
	t.SetMeta(meta)
	e.fillSeats(&t, m)

	var frames [NumSeats]protocol.Table
	for seat := range frames {
		frames[seat] = t
	}
	return e.transport.Broadcast(ctx, frames)
}
