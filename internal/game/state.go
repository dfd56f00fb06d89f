// Package game owns the Daihinmin match state machine: hands, field,
// turn order, inter-game exchange, and session scoring.
package game

import (
	"fmt"

	"github.com/uecda/uecda-server-go/internal/card"
	"github.com/uecda/uecda-server-go/internal/game/rules"
)

// NumSeats is the fixed table size.
const NumSeats = 5

// ClassRank is a seat's social class, carried between games.
type ClassRank int

const (
	ClassDaifugo ClassRank = iota
	ClassFugo
	ClassHeimin
	ClassHinmin
	ClassDaihinmin
)

var classNames = map[ClassRank]string{
	ClassDaifugo:   "daifugo",
	ClassFugo:      "fugo",
	ClassHeimin:    "heimin",
	ClassHinmin:    "hinmin",
	ClassDaihinmin: "daihinmin",
}

func (c ClassRank) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CLASS_%d", int(c))
}

// Field is the pile the next play must beat, plus the rule flags scoped
// to the current trick or game.
type Field struct {
	LastPlay   rules.Analysis
	LastCards  card.Set
	LastPlayer int // -1 until the first play of a game
	Lock       card.SuitMask
	Revolution bool // survives field clears; toggled only by revolutions
	ElevenBack bool // reverts when the field clears
	EightCut   bool // the most recent clear came from an eight-cut
	PassMask   uint8
}

// Empty reports whether the field is clear.
func (f *Field) Empty() bool {
	return f.LastCards.Empty()
}

// Inverted is the effective comparison direction: revolution XOR
// eleven-back.
func (f *Field) Inverted() bool {
	return f.Revolution != f.ElevenBack
}

// Clear flushes the trick-scoped state. Revolution and the last player
// persist.
func (f *Field) Clear() {
	f.LastPlay = rules.Analysis{Shape: rules.ShapePass}
	f.LastCards = nil
	f.Lock = 0
	f.ElevenBack = false
	f.EightCut = false
	f.PassMask = 0
}

// State projects the field into the view the rule engine checks
// against.
func (f *Field) State() rules.FieldState {
	if f.Empty() {
		return rules.FieldState{Shape: rules.ShapePass, Lock: f.Lock, Inverted: f.Inverted()}
	}
	return rules.FieldState{
		Shape:       f.LastPlay.Shape,
		Size:        f.LastPlay.Size,
		Rank:        f.LastPlay.Rank,
		Suits:       f.LastPlay.Suits,
		Lock:        f.Lock,
		JokerSingle: f.LastPlay.Shape == rules.ShapeJokerSingle,
		Inverted:    f.Inverted(),
	}
}

// MatchState is the per-game state. It is created at the deal and
// discarded after scoring.
type MatchState struct {
	Hands       [NumSeats]card.Set
	Discarded   card.Set // cards out of play after the field cleared
	Field       Field
	Active      int
	Turn        int
	Direction   int // +1 clockwise, -1 under six-reverse
	Finished    [NumSeats]bool
	FinishOrder []int
	PassStreak  int // consecutive passes, for the thousand-day hand
}

// NewMatchState returns an empty match ready for the deal.
func NewMatchState() *MatchState {
	m := &MatchState{
		Discarded: card.NewSet(),
		Direction: 1,
	}
	for seat := range m.Hands {
		m.Hands[seat] = card.NewSet()
	}
	m.Field.Clear()
	m.Field.LastPlayer = -1
	return m
}

// FinishedCount returns how many seats have emptied their hands.
func (m *MatchState) FinishedCount() int {
	return len(m.FinishOrder)
}

// NextSeat returns the next seat after from, in the current direction,
// holding a non-empty hand.
func (m *MatchState) NextSeat(from int) int {
	seat := from
	for i := 0; i < NumSeats; i++ {
		seat = (seat + m.Direction + NumSeats) % NumSeats
		if !m.Finished[seat] {
			return seat
		}
	}
	return from
}

// MarkFinished appends the seat to the finish order.
func (m *MatchState) MarkFinished(seat int) error {
	if m.Finished[seat] {
		return fmt.Errorf("seat %d finished twice", seat)
	}
	m.Finished[seat] = true
	m.FinishOrder = append(m.FinishOrder, seat)
	return nil
}

// CheckConservation verifies that hands, the live field, and the
// discard pile partition the 53-card deck. A failure is fatal.
func (m *MatchState) CheckConservation() error {
	seen := card.NewSet()
	total := 0
	add := func(s card.Set, where string) error {
		for c := range s {
			if seen.Contains(c) {
				return fmt.Errorf("card %s duplicated in %s", c, where)
			}
			seen.Add(c)
			total++
		}
		return nil
	}
	for seat, hand := range m.Hands {
		if err := add(hand, fmt.Sprintf("hand %d", seat)); err != nil {
			return err
		}
	}
	if err := add(m.Field.LastCards, "field"); err != nil {
		return err
	}
	if err := add(m.Discarded, "discard pile"); err != nil {
		return err
	}
	if total != card.DeckSize {
		return fmt.Errorf("card conservation violated: %d cards in play", total)
	}
	return nil
}

// SessionState persists across the games of one session.
type SessionState struct {
	TotalGames  int
	GamesPlayed int
	Classes     [NumSeats]ClassRank
	Points      [NumSeats]int
}

// NewSessionState starts everyone as heimin.
func NewSessionState(totalGames int) *SessionState {
	s := &SessionState{TotalGames: totalGames}
	for seat := range s.Classes {
		s.Classes[seat] = ClassHeimin
	}
	return s
}

// SeatWithClass returns the lowest seat currently holding the given
// class, or -1 if no seat holds it (before the first game is scored
// every seat is heimin).
func (s *SessionState) SeatWithClass(class ClassRank) int {
	for seat, c := range s.Classes {
		if c == class {
			return seat
		}
	}
	return -1
}
