package protocol

import (
	"testing"

	"github.com/uecda/uecda-server-go/internal/card"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var in Table
	in.SetMeta(Meta{
		Turn:       42,
		ActiveSeat: 3,
		YourTurn:   true,
		Revolution: true,
		Lock:       card.MaskOf(card.SuitHeart) | card.MaskOf(card.SuitClub),
		Game:       7,
		TotalGames: 100,
	})
	in.SetCards(card.SetOf("S3,H10,DK,Jo"), CellCard)
	in.SetSeatInfo(2, SeatInfo{Finished: true, CardCount: 0, Class: 4, Points: 9})

	buf := in.Encode()
	if len(buf) != FrameBytes {
		t.Fatalf("expected %d bytes, got %d", FrameBytes, len(buf))
	}

	out, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out != in {
		t.Fatal("round trip changed the table")
	}
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	if _, err := Decode(make([]byte, FrameBytes-1)); err == nil {
		t.Fatal("expected error for truncated frame")
	}
}

func TestCardsRoundTrip(t *testing.T) {
	sets := []string{
		"",
		"S3",
		"Jo",
		"S3,H4,D5,C6,Jo",
		"S2,H2,D2,C2",
	}
	for _, symbols := range sets {
		var tbl Table
		in := card.SetOf(symbols)
		tbl.SetCards(in, CellCard)
		out := tbl.Cards()
		if out.Len() != in.Len() {
			t.Fatalf("%q: expected %d cards, got %d", symbols, in.Len(), out.Len())
		}
		for c := range in {
			if !out.Contains(c) {
				t.Fatalf("%q: lost card %v", symbols, c)
			}
		}
	}
}

func TestMarkedReadsOnlyChosenCells(t *testing.T) {
	var tbl Table
	tbl.SetCards(card.SetOf("S3,H4,D5"), CellCard)
	tbl.SetCards(card.SetOf("H4"), CellChosen)

	marked := tbl.Marked()
	if marked.Len() != 1 || !marked.Contains(card.MustParse("H4")) {
		t.Fatalf("expected only H4 marked, got %v", marked.Cards())
	}
	if tbl.IsPass() {
		t.Error("a marked frame is not a pass")
	}

	var empty Table
	if !empty.IsPass() {
		t.Error("an all-zero frame is a pass")
	}
}

func TestJokerCell(t *testing.T) {
	row, col := Cell(card.JokerCard())
	if row != 1 || col != 14 {
		t.Fatalf("joker cell should be (1,14), got (%d,%d)", row, col)
	}
	row, col = Cell(card.MustParse("S3"))
	if row != 1 || col != 0 {
		t.Fatalf("S3 cell should be (1,0), got (%d,%d)", row, col)
	}
	row, col = Cell(card.MustParse("C2"))
	if row != 4 || col != 12 {
		t.Fatalf("C2 cell should be (4,12), got (%d,%d)", row, col)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	in := Meta{
		Turn:       9,
		ActiveSeat: 4,
		TrickStart: true,
		ElevenBack: true,
		EightCut:   true,
		Lock:       card.MaskOf(card.SuitSpade),
		Game:       3,
		TotalGames: 10,
		SessionEnd: true,
	}
	var tbl Table
	tbl.SetMeta(in)
	if got := tbl.Meta(); got != in {
		t.Fatalf("meta round trip changed %+v into %+v", in, got)
	}
}

func TestSeatInfoRoundTrip(t *testing.T) {
	var tbl Table
	for seat := 0; seat < NumSeats; seat++ {
		tbl.SetSeatInfo(seat, SeatInfo{
			Finished:  seat%2 == 0,
			CardCount: 11 - seat,
			Class:     seat,
			Points:    seat * 3,
		})
	}
	for seat := 0; seat < NumSeats; seat++ {
		info := tbl.SeatInfo(seat)
		if info.CardCount != 11-seat || info.Class != seat || info.Points != seat*3 {
			t.Fatalf("seat %d: unexpected info %+v", seat, info)
		}
	}
}

func TestProfileRoundTrip(t *testing.T) {
	tbl := ProfileTable("alice")
	version, name := ParseProfile(tbl)
	if version != Version {
		t.Errorf("expected version %d, got %d", Version, version)
	}
	if name != "alice" {
		t.Errorf("expected name alice, got %q", name)
	}

	long := ProfileTable("a-very-long-client-name")
	_, name = ParseProfile(long)
	if len(name) > 14 {
		t.Errorf("name should be truncated to 14 bytes, got %q", name)
	}
}
