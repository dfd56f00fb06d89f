package game

import (
	"go.uber.org/zap"

	"github.com/uecda/uecda-server-go/internal/card"
	"github.com/uecda/uecda-server-go/internal/journal"
)

var spadeThree = card.New(card.SuitSpade, card.RankThree)

// deal shuffles the 53-card deck and distributes it round-robin from
// seat 0, leaving seats 0-2 with eleven cards and seats 3-4 with ten.
func (e *Engine) deal(m *MatchState) {
	deck := card.Deck()
	e.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	for i, c := range deck {
		m.Hands[i%NumSeats].Add(c)
	}
}

// firstSeat picks the opening lead: the Spade 3 holder in game one, the
// previous daihinmin afterwards.
func (e *Engine) firstSeat(m *MatchState, g int) int {
	if g > 1 {
		if seat := e.session.SeatWithClass(ClassDaihinmin); seat >= 0 {
			return seat
		}
	}
	for seat, hand := range m.Hands {
		if hand.Contains(spadeThree) {
			return seat
		}
	}
	return 0
}

// weakestCards picks n cards from the hand, weakest first under Normal
// direction with the Spade > Heart > Diamond > Club tiebreak. When the
// filter leaves fewer than n candidates, the remainder is topped up
// from the filtered-out cards.
func weakestCards(hand card.Set, n int, keep func(card.Card) bool) []card.Card {
	ordered := hand.ByStrength()
	picked := make([]card.Card, 0, n)
	for i := len(ordered) - 1; i >= 0 && len(picked) < n; i-- {
		if keep == nil || keep(ordered[i]) {
			picked = append(picked, ordered[i])
		}
	}
	for i := len(ordered) - 1; i >= 0 && len(picked) < n; i-- {
		if keep != nil && !keep(ordered[i]) {
			picked = append(picked, ordered[i])
		}
	}
	return picked
}

// exchange runs the forced inter-game card exchange: daifugō and
// daihinmin swap two cards, fugō and hinmin one. The high seat gives
// its weakest cards keeping Jokers and 2s; the low seat gives its
// weakest outright.
func (e *Engine) exchange(m *MatchState, g int) {
	pairings := []struct {
		high, low ClassRank
		count     int
	}{
		{ClassDaifugo, ClassDaihinmin, 2},
		{ClassFugo, ClassHinmin, 1},
	}

	var records []journal.ExchangeRecord
	for _, p := range pairings {
		rich := e.session.SeatWithClass(p.high)
		poor := e.session.SeatWithClass(p.low)
		if rich < 0 || poor < 0 {
			continue
		}
		give := weakestCards(m.Hands[rich], p.count, func(c card.Card) bool {
			return !c.Joker && c.Rank != card.RankTwo
		})
		back := weakestCards(m.Hands[poor], p.count, nil)

		for _, c := range give {
			m.Hands[rich].Remove(c)
			m.Hands[poor].Add(c)
		}
		for _, c := range back {
			m.Hands[poor].Remove(c)
			m.Hands[rich].Add(c)
		}

		records = append(records,
			journal.ExchangeRecord{From: rich, To: poor, Cards: card.NewSet(give...).Format()},
			journal.ExchangeRecord{From: poor, To: rich, Cards: card.NewSet(back...).Format()},
		)
		e.log.Info("exchange",
			zap.Int("from", rich),
			zap.Int("to", poor),
			zap.Int("cards", p.count),
		)
	}
	e.journal.Exchange(g, records, e.handsMap(m))
}
