package game

import (
	"testing"

	"github.com/uecda/uecda-server-go/internal/card"
	"github.com/uecda/uecda-server-go/internal/game/rules"
)

func TestFieldClearKeepsRevolution(t *testing.T) {
	var f Field
	f.Clear()
	f.Revolution = true
	f.ElevenBack = true
	f.Lock = card.MaskOf(card.SuitSpade)
	f.LastCards = card.SetOf("S9")
	f.LastPlay = rules.Classify(f.LastCards, nil)

	f.Clear()
	if !f.Revolution {
		t.Error("revolution should survive a field clear")
	}
	if f.ElevenBack {
		t.Error("eleven-back should end when the field clears")
	}
	if f.Lock != 0 {
		t.Error("suit lock should end when the field clears")
	}
	if !f.Empty() {
		t.Error("field should be empty after clear")
	}
}

func TestFieldInverted(t *testing.T) {
	var f Field
	cases := []struct {
		revolution, elevenBack, want bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, true},
		{true, true, false},
	}
	for _, tc := range cases {
		f.Revolution = tc.revolution
		f.ElevenBack = tc.elevenBack
		if f.Inverted() != tc.want {
			t.Errorf("revolution=%v elevenBack=%v: expected inverted=%v",
				tc.revolution, tc.elevenBack, tc.want)
		}
	}
}

func TestNextSeatSkipsFinished(t *testing.T) {
	m := NewMatchState()
	for seat := range m.Hands {
		m.Hands[seat] = card.NewSet(card.New(card.SuitSpade, card.Rank(seat)))
	}
	m.Finished[1] = true
	m.Finished[2] = true

	if next := m.NextSeat(0); next != 3 {
		t.Errorf("expected seat 3 after skipping 1 and 2, got %d", next)
	}

	m.Direction = -1
	if next := m.NextSeat(3); next != 0 {
		t.Errorf("counter-clockwise from 3 should reach 0, got %d", next)
	}
}

func TestMarkFinishedRejectsDuplicates(t *testing.T) {
	m := NewMatchState()
	if err := m.MarkFinished(2); err != nil {
		t.Fatalf("first finish failed: %v", err)
	}
	if err := m.MarkFinished(2); err == nil {
		t.Fatal("expected duplicate finish to fail")
	}
	if len(m.FinishOrder) != 1 {
		t.Fatalf("finish order corrupted: %v", m.FinishOrder)
	}
}

func TestCheckConservation(t *testing.T) {
	m := NewMatchState()
	for i, c := range card.Deck() {
		m.Hands[i%NumSeats].Add(c)
	}
	if err := m.CheckConservation(); err != nil {
		t.Fatalf("full deal should conserve cards: %v", err)
	}

	// Moving a card between zones keeps the invariant.
	s9 := card.New(card.SuitSpade, card.RankNine)
	for seat := range m.Hands {
		if m.Hands[seat].Contains(s9) {
			m.Hands[seat].Remove(s9)
			break
		}
	}
	m.Field.LastCards = card.NewSet(s9)
	if err := m.CheckConservation(); err != nil {
		t.Fatalf("card on field should conserve: %v", err)
	}

	// Duplicating it does not.
	m.Discarded.Add(s9)
	if err := m.CheckConservation(); err == nil {
		t.Fatal("expected duplicated card to be detected")
	}

	// Losing one does not either.
	m.Discarded.Remove(s9)
	m.Field.LastCards = card.NewSet()
	if err := m.CheckConservation(); err == nil {
		t.Fatal("expected lost card to be detected")
	}
}

func TestSessionStateClasses(t *testing.T) {
	s := NewSessionState(10)
	for seat := range s.Classes {
		if s.Classes[seat] != ClassHeimin {
			t.Fatalf("seat %d should start as heimin", seat)
		}
	}
	if s.SeatWithClass(ClassDaifugo) != -1 {
		t.Error("no daifugo should exist before the first game")
	}
	s.Classes[3] = ClassDaifugo
	if s.SeatWithClass(ClassDaifugo) != 3 {
		t.Error("expected seat 3 as daifugo")
	}
}
