// Package protocol implements the UECda version 20070 wire format:
// every message is one 480-byte frame holding an 8x15 matrix of
// big-endian 32-bit integers.
package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/uecda/uecda-server-go/internal/card"
)

// Version is the protocol version this server speaks.
const Version = 20070

// NumSeats is the fixed table size of the protocol.
const NumSeats = 5

// Frame geometry.
const (
	Rows       = 8
	Cols       = 15
	FrameBytes = Rows * Cols * 4
)

// Row 0 carries per-message metadata.
const (
	rowMeta        = 0
	colTurn        = 0 // protocol version during handshake
	colActiveSeat  = 1
	colYourTurn    = 2
	colTrickStart  = 3
	colRevolution  = 4
	colElevenBack  = 5
	colEightCut    = 6
	colLockFlag    = 7
	colLockSuit    = 8 // cols 8..11, one per suit
	colGameNumber  = 12
	colTotalGames  = 13
	colSessionEnd  = 14
)

// Rows 1-4 carry the four suits; the Joker has a reserved cell.
const (
	rowSuitBase = 1
	jokerRow    = 1
	jokerCol    = 14
)

// Rows 5-7 carry per-seat state.
const (
	rowSeats      = 5 // finished flags in cols 0..4, card counts in cols 5..9
	colCountBase  = 5
	rowClasses    = 6
	rowPoints     = 7
	profileRow    = 1 // client name bytes during handshake
	maxNameLength = 14
)

// Cell values for the card region.
const (
	CellEmpty  = 0
	CellCard   = 1
	CellChosen = 2
)

// Table is one frame's matrix.
type Table [Rows][Cols]int32

// Encode serializes the matrix in network byte order. Negative values
// are clamped to zero before transmission.
func (t *Table) Encode() []byte {
	buf := make([]byte, FrameBytes)
	for i := 0; i < Rows; i++ {
		for j := 0; j < Cols; j++ {
			v := t[i][j]
			if v < 0 {
				v = 0
			}
			binary.BigEndian.PutUint32(buf[(i*Cols+j)*4:], uint32(v))
		}
	}
	return buf
}

// Decode parses a 480-byte frame.
func Decode(buf []byte) (Table, error) {
	var t Table
	if len(buf) != FrameBytes {
		return t, fmt.Errorf("frame size %d, want %d", len(buf), FrameBytes)
	}
	for i := 0; i < Rows; i++ {
		for j := 0; j < Cols; j++ {
			t[i][j] = int32(binary.BigEndian.Uint32(buf[(i*Cols+j)*4:]))
		}
	}
	return t, nil
}

// Cell returns the matrix coordinate of a card.
func Cell(c card.Card) (row, col int) {
	if c.Joker {
		return jokerRow, jokerCol
	}
	return rowSuitBase + int(c.Suit), int(c.Rank)
}

// cardAt is the inverse of Cell for the natural-card region.
func cardAt(row, col int) (card.Card, bool) {
	if row == jokerRow && col == jokerCol {
		return card.JokerCard(), true
	}
	if row < rowSuitBase || row >= rowSuitBase+card.NumSuits {
		return card.Card{}, false
	}
	if col < 0 || col >= card.NumRanks {
		return card.Card{}, false
	}
	return card.New(card.Suit(row-rowSuitBase), card.Rank(col)), true
}

// SetCards marks every card of the set with the given cell value.
func (t *Table) SetCards(s card.Set, value int32) {
	for c := range s {
		row, col := Cell(c)
		t[row][col] = value
	}
}

// Cards returns every card whose cell is positive.
func (t *Table) Cards() card.Set {
	return t.cardsWhere(func(v int32) bool { return v >= CellCard })
}

// Marked returns every card whose cell carries the chosen-play value.
func (t *Table) Marked() card.Set {
	return t.cardsWhere(func(v int32) bool { return v == CellChosen })
}

func (t *Table) cardsWhere(match func(int32) bool) card.Set {
	out := card.NewSet()
	for row := rowSuitBase; row < rowSuitBase+card.NumSuits; row++ {
		for col := 0; col < card.NumRanks; col++ {
			if match(t[row][col]) {
				c, _ := cardAt(row, col)
				out.Add(c)
			}
		}
	}
	if match(t[jokerRow][jokerCol]) {
		out.Add(card.JokerCard())
	}
	return out
}

// IsPass reports whether a reply frame submits no cards.
func (t *Table) IsPass() bool {
	return t.Marked().Empty()
}

// Meta is the decoded metadata row of a play-phase frame.
type Meta struct {
	Turn       int
	ActiveSeat int
	YourTurn   bool
	TrickStart bool
	Revolution bool
	ElevenBack bool
	EightCut   bool
	Lock       card.SuitMask
	Game       int
	TotalGames int
	SessionEnd bool
}

func flag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// SetMeta fills row 0.
func (t *Table) SetMeta(m Meta) {
	t[rowMeta][colTurn] = int32(m.Turn)
	t[rowMeta][colActiveSeat] = int32(m.ActiveSeat)
	t[rowMeta][colYourTurn] = flag(m.YourTurn)
	t[rowMeta][colTrickStart] = flag(m.TrickStart)
	t[rowMeta][colRevolution] = flag(m.Revolution)
	t[rowMeta][colElevenBack] = flag(m.ElevenBack)
	t[rowMeta][colEightCut] = flag(m.EightCut)
	t[rowMeta][colLockFlag] = flag(m.Lock != 0)
	for s := card.SuitSpade; s <= card.SuitClub; s++ {
		t[rowMeta][colLockSuit+int(s)] = flag(m.Lock.Has(s))
	}
	t[rowMeta][colGameNumber] = int32(m.Game)
	t[rowMeta][colTotalGames] = int32(m.TotalGames)
	t[rowMeta][colSessionEnd] = flag(m.SessionEnd)
}

// Meta decodes row 0.
func (t *Table) Meta() Meta {
	var lock card.SuitMask
	for s := card.SuitSpade; s <= card.SuitClub; s++ {
		if t[rowMeta][colLockSuit+int(s)] != 0 {
			lock |= card.MaskOf(s)
		}
	}
	return Meta{
		Turn:       int(t[rowMeta][colTurn]),
		ActiveSeat: int(t[rowMeta][colActiveSeat]),
		YourTurn:   t[rowMeta][colYourTurn] != 0,
		TrickStart: t[rowMeta][colTrickStart] != 0,
		Revolution: t[rowMeta][colRevolution] != 0,
		ElevenBack: t[rowMeta][colElevenBack] != 0,
		EightCut:   t[rowMeta][colEightCut] != 0,
		Lock:       lock,
		Game:       int(t[rowMeta][colGameNumber]),
		TotalGames: int(t[rowMeta][colTotalGames]),
		SessionEnd: t[rowMeta][colSessionEnd] != 0,
	}
}

// SeatInfo is one seat's share of rows 5-7.
type SeatInfo struct {
	Finished  bool
	CardCount int
	Class     int
	Points    int
}

// SetSeatInfo fills one seat's columns in rows 5-7.
func (t *Table) SetSeatInfo(seat int, info SeatInfo) {
	t[rowSeats][seat] = flag(info.Finished)
	t[rowSeats][colCountBase+seat] = int32(info.CardCount)
	t[rowClasses][seat] = int32(info.Class)
	t[rowPoints][seat] = int32(info.Points)
}

// SeatInfo decodes one seat's columns from rows 5-7.
func (t *Table) SeatInfo(seat int) SeatInfo {
	return SeatInfo{
		Finished:  t[rowSeats][seat] != 0,
		CardCount: int(t[rowSeats][colCountBase+seat]),
		Class:     int(t[rowClasses][seat]),
		Points:    int(t[rowPoints][seat]),
	}
}

// HelloTable is the server's handshake frame: protocol version and the
// assigned seat.
func HelloTable(seat int) Table {
	var t Table
	t[rowMeta][colTurn] = Version
	t[rowMeta][colActiveSeat] = int32(seat)
	return t
}

// ProfileTable is the client's handshake reply: the echoed version plus
// the player name as ASCII bytes in row 1.
func ProfileTable(name string) Table {
	var t Table
	t[rowMeta][colTurn] = Version
	for i := 0; i < len(name) && i < maxNameLength; i++ {
		t[profileRow][i] = int32(name[i])
	}
	return t
}

// ParseProfile extracts the version and name from a handshake reply.
func ParseProfile(t Table) (version int, name string) {
	version = int(t[rowMeta][colTurn])
	raw := make([]byte, 0, maxNameLength)
	for i := 0; i < maxNameLength; i++ {
		b := t[profileRow][i]
		if b <= 0 || b > 127 {
			break
		}
		raw = append(raw, byte(b))
	}
	return version, string(raw)
}
