// Package rules implements play classification, legality checking, and
// the special-rule effects of Daihinmin.
package rules

import (
	"fmt"
	"sort"

	"github.com/uecda/uecda-server-go/internal/card"
)

// Shape is the recognized form of a submitted play.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapePass
	ShapeSingle
	ShapeJokerSingle
	ShapeGroup
	ShapeSequence
)

var shapeNames = map[Shape]string{
	ShapeInvalid:     "INVALID",
	ShapePass:        "PASS",
	ShapeSingle:      "SINGLE",
	ShapeJokerSingle: "JOKER_SINGLE",
	ShapeGroup:       "GROUP",
	ShapeSequence:    "SEQUENCE",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SHAPE_%d", int(s))
}

// journal labels for each shape; the journal calls groups "pair"
// regardless of size.
var shapeLabels = map[Shape]string{
	ShapeInvalid:     "empty",
	ShapePass:        "empty",
	ShapeSingle:      "single",
	ShapeJokerSingle: "joker_single",
	ShapeGroup:       "pair",
	ShapeSequence:    "sequence",
}

// Label returns the journal name of the shape.
func (s Shape) Label() string {
	return shapeLabels[s]
}

// Group and sequence size limits.
const (
	MinGroupSize    = 2
	MaxGroupSize    = 4
	MinSequenceSize = 3
	MaxSequenceSize = 14
)

// Analysis is the classification of a submitted play. Rank is the
// comparison representative: the shared rank for Single/Group, the top
// rank for Sequence. Ranks lists every rank the play covers, including
// a slot filled by the Joker. NonJokerSuits excludes the position the
// Joker stands in for; Suits includes it.
type Analysis struct {
	Shape         Shape
	Size          int
	Rank          card.Rank
	Low           card.Rank
	Suits         card.SuitMask
	NonJokerSuits card.SuitMask
	Joker         bool
	Ranks         []card.Rank
}

// IsPass reports whether the play is an empty submission.
func (a Analysis) IsPass() bool {
	return a.Shape == ShapePass
}

// HasRank reports whether the play covers the given rank.
func (a Analysis) HasRank(r card.Rank) bool {
	for _, covered := range a.Ranks {
		if covered == r {
			return true
		}
	}
	return false
}

// CountRank returns how many positions of the play carry the given rank.
func (a Analysis) CountRank(r card.Rank) int {
	n := 0
	for _, covered := range a.Ranks {
		if covered == r {
			n++
		}
	}
	return n
}

// rankStrength orders representative ranks under the effective
// direction. Higher is stronger.
func rankStrength(r card.Rank, inverted bool) int {
	if inverted {
		return int(card.RankTwo - r)
	}
	return int(r)
}

// Classify recognizes the shape of a play. The play set holds the
// marked positions; when the Joker stands in for one of them, jokerFor
// names that position (which must also be in the set). A Joker played
// as itself appears in the set as the Joker card and the classifier
// chooses its slot.
func Classify(play card.Set, jokerFor *card.Card) Analysis {
	if play.Empty() {
		return Analysis{Shape: ShapePass}
	}

	floatingJoker := play.HasJoker()
	if floatingJoker && jokerFor != nil {
		return Analysis{Shape: ShapeInvalid, Size: play.Len()}
	}
	if jokerFor != nil && (!play.Contains(*jokerFor) || jokerFor.Joker) {
		return Analysis{Shape: ShapeInvalid, Size: play.Len()}
	}

	if play.Len() == 1 {
		if floatingJoker {
			return Analysis{Shape: ShapeJokerSingle, Size: 1, Joker: true}
		}
		c := play.Cards()[0]
		a := Analysis{
			Shape: ShapeSingle,
			Size:  1,
			Rank:  c.Rank,
			Low:   c.Rank,
			Suits: card.MaskOf(c.Suit),
			Ranks: []card.Rank{c.Rank},
		}
		if jokerFor != nil {
			a.Joker = true
		} else {
			a.NonJokerSuits = a.Suits
		}
		return a
	}

	// Positions on the board: everything except a floating Joker.
	positions := make([]card.Card, 0, play.Len())
	for _, c := range play.Cards() {
		if !c.Joker {
			positions = append(positions, c)
		}
	}
	size := len(positions)
	if floatingJoker {
		size++
	}

	if a, ok := classifyGroup(positions, jokerFor, floatingJoker, size); ok {
		return a
	}
	if a, ok := classifySequence(positions, jokerFor, floatingJoker, size); ok {
		return a
	}
	return Analysis{Shape: ShapeInvalid, Size: size}
}

func classifyGroup(positions []card.Card, jokerFor *card.Card, floatingJoker bool, size int) (Analysis, bool) {
	if len(positions) == 0 || size < MinGroupSize || size > MaxGroupSize {
		return Analysis{}, false
	}
	rank := positions[0].Rank
	var suits, nonJoker card.SuitMask
	for _, c := range positions {
		if c.Rank != rank {
			return Analysis{}, false
		}
		suits |= card.MaskOf(c.Suit)
		if jokerFor == nil || *jokerFor != c {
			nonJoker |= card.MaskOf(c.Suit)
		}
	}
	ranks := make([]card.Rank, size)
	for i := range ranks {
		ranks[i] = rank
	}
	return Analysis{
		Shape:         ShapeGroup,
		Size:          size,
		Rank:          rank,
		Low:           rank,
		Suits:         suits,
		NonJokerSuits: nonJoker,
		Joker:         floatingJoker || jokerFor != nil,
		Ranks:         ranks,
	}, true
}

func classifySequence(positions []card.Card, jokerFor *card.Card, floatingJoker bool, size int) (Analysis, bool) {
	if size < MinSequenceSize || size > MaxSequenceSize {
		return Analysis{}, false
	}
	suit := positions[0].Suit
	ranks := make([]card.Rank, 0, len(positions))
	seen := make(map[card.Rank]bool, len(positions))
	for _, c := range positions {
		if c.Suit != suit || seen[c.Rank] {
			return Analysis{}, false
		}
		seen[c.Rank] = true
		ranks = append(ranks, c.Rank)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	low, high := ranks[0], ranks[len(ranks)-1]
	gaps := int(high-low) + 1 - len(ranks)

	if floatingJoker {
		switch gaps {
		case 0:
			// Contiguous already: the Joker extends one end, the lower
			// end when possible.
			if low > card.RankThree {
				low--
			} else if high < card.RankTwo {
				high++
			}
			// Full 3..2 run: the thirteen naturals plus Joker form the
			// fourteen-card sequence with no slot to extend.
		case 1:
			// Exactly one missing rank inside the run.
		default:
			return Analysis{}, false
		}
	} else if gaps != 0 {
		return Analysis{}, false
	}

	if int(high-low)+1 != size && !(floatingJoker && size == MaxSequenceSize) {
		return Analysis{}, false
	}

	covered := make([]card.Rank, 0, size)
	for r := low; r <= high; r++ {
		covered = append(covered, r)
	}

	return Analysis{
		Shape:         ShapeSequence,
		Size:          size,
		Rank:          high,
		Low:           low,
		Suits:         card.MaskOf(suit),
		NonJokerSuits: card.MaskOf(suit),
		Joker:         floatingJoker || jokerFor != nil,
		Ranks:         covered,
	}, true
}
